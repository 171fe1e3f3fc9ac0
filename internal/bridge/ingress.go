package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/mqtt"
)

// commandTimeout bounds how long an MQTT command waits for the loop.
const commandTimeout = 5 * time.Second

// Start subscribes to the command topics. Commands run until ctx is
// cancelled. Without a publisher it does nothing.
func (b *Bridge) Start(ctx context.Context) error {
	if b.pub == nil {
		return nil
	}
	topic := mqtt.Topics{}.AllCommands()
	if err := b.pub.Subscribe(topic, 1, b.commandHandler(ctx)); err != nil {
		return err
	}
	b.logger.Info("listening for mqtt commands", "topic", topic)
	return nil
}

// Stop removes the command subscription.
func (b *Bridge) Stop() error {
	if b.pub == nil {
		return nil
	}
	return b.pub.Unsubscribe(mqtt.Topics{}.AllCommands())
}

func (b *Bridge) commandHandler(ctx context.Context) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		name, ok := mqtt.SoundFromCommand(topic)
		if !ok {
			b.logger.Debug("ignoring command on unexpected topic", "topic", topic)
			return nil
		}

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			b.reply(Result{Sound: name, Error: "invalid JSON command"})
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()

		var res Result
		err := b.exec.Do(ctx, func() {
			res, _ = b.Execute(name, cmd) //nolint:errcheck // reported through res.Error
		})
		if err != nil {
			b.logger.Warn("mqtt command not executed", "sound", name, "op", cmd.Op, "error", err)
			res = Result{ID: cmd.ID, Sound: name, Op: cmd.Op, Error: err.Error()}
		}
		b.reply(res)
		return nil
	}
}

func (b *Bridge) reply(res Result) {
	b.publishJSON(mqtt.Topics{}.Result(res.Sound), res, false)
}
