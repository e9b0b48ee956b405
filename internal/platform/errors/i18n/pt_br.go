package i18n

var ptBR = map[Code]string{
	CodeUnknown:                   "Algo deu errado. Tente novamente.",
	CodeNotYourSession:            "Esta aventura não é sua! Comece a sua para jogar.",
	CodeStaleSession:              "Esta aventura já avançou. Use a mensagem mais recente.",
	CodeInsufficientBalance:       "Você não tem créditos suficientes (saldo {{amount .Balance}}, necessário {{cost .Required}}).",
	CodeSessionInProgress:         "Você já tem uma aventura em andamento.",
	CodeNotYourConfirmation:       "Esta confirmação não é para você.",
	CodeCharacterNameEmpty:        "Seu personagem precisa de um nome.",
	CodeCharacterNameTooLong:      "Nomes de personagem têm no máximo {{.Max}} caracteres.",
	CodeCharacterBackstoryEmpty:   "Seu personagem precisa de uma história.",
	CodeCharacterBackstoryTooLong: "Histórias têm no máximo {{.Max}} caracteres.",
	CodeCharacterTraitsTooLong:    "A lista {{.Field}} tem no máximo {{.Max}} caracteres.",
	CodeCharacterRequired:         "Você precisa criar um personagem primeiro.",
	CodeCreditAmountInvalid:       "O valor deve ser positivo.",
	CodePermissionDenied:          "Você não tem permissão para usar este comando.",
	CodeUnauthenticated:           "Entre para continuar.",
	CodeInvalidArgument:           "Não foi possível entender o pedido.",
	CodeNotFound:                  "Nada encontrado.",
	CodeTransport:                 "Algo deu errado. Tente novamente.",
	CodeGenerator:                 "Algo deu errado. Tente novamente.",
	CodeStorage:                   "Algo deu errado. Tente novamente.",

	NoticeWelcome:          "Boas-vindas, aventureiro! Você recebeu {{amount .Amount}} créditos para começar.",
	NoticeLowBalance:       "Seus créditos estão acabando ({{amount .Balance}} restantes).",
	NoticeExhausted:        "Seus créditos acabaram. Sua aventura pausa aqui.",
	NoticeTimedOut:         "Sua aventura expirou por inatividade.",
	NoticeTitleOpening:     "A Aventura de {{.Name}} Começa!",
	NoticeTitle:            "A Aventura de {{.Name}}",
	NoticeFooter:           "Créditos restantes: {{amount .Balance}} | Custo da escolha: {{cost .Cost}}",
	NoticeResetTitle:       "Redefinir Personagem",
	NoticeResetPrompt:      "Tem certeza? Isso apaga seu personagem e encerra a aventura atual.",
	NoticeResetDone:        "Seu personagem foi apagado. Comece de novo para criar outro.",
	NoticeResetCancelled:   "Redefinição cancelada.",
	NoticeResetExpired:     "A confirmação expirou.",
	NoticeResetNoCharacter: "Você não tem um personagem para redefinir.",
	NoticeBalance:          "Seu saldo é {{amount .Balance}} créditos.",
	NoticeCreditsGranted:   "{{amount .Amount}} créditos adicionados para {{.User}}. Novo saldo: {{amount .Balance}}.",
	NoticeFailure:          "Algo deu errado. Tente novamente.",
	LabelConfirmReset:      "Sim, redefinir",
	LabelCancel:            "Cancelar",
}
