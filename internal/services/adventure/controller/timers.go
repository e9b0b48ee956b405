package controller

import (
	"context"
	"log"
	"time"
)

// arm schedules a Timeout event for messageID, replacing any timer already
// bound to it.
func (c *Controller) arm(userID, messageID string, d time.Duration) {
	timer := c.scheduler.AfterFunc(d, func() {
		c.fire(userID, messageID)
	})
	c.mu.Lock()
	old := c.timers[messageID]
	c.timers[messageID] = timer
	c.mu.Unlock()
	if old != nil {
		old.Stop()
	}
}

// disarm stops the timer bound to messageID.
func (c *Controller) disarm(messageID string) {
	c.mu.Lock()
	timer := c.timers[messageID]
	delete(c.timers, messageID)
	c.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
}

func (c *Controller) fire(userID, messageID string) {
	c.mu.Lock()
	delete(c.timers, messageID)
	c.mu.Unlock()

	out, err := c.Handle(context.Background(), Event{Kind: KindTimeout, UserID: userID, MessageID: messageID})
	if err != nil {
		log.Printf("adventure: timeout failed user=%q message=%q err=%v", userID, messageID, err)
		return
	}
	if out.Status != StatusIgnored {
		log.Printf("adventure: timeout user=%q message=%q status=%s", userID, messageID, out.Status)
	}
}
