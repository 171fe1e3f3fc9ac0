// Package mqtt connects the audio service to the site's Mosquitto broker.
//
// The service publishes sound state, progress notifications and bus values
// under graylogic/audio/, and accepts commands on
// graylogic/audio/command/{sound}. See Topics for the full layout.
//
// The client reconnects with backoff, restores subscriptions after each
// reconnect, and keeps a retained status message on
// graylogic/audio/system/status (with a will message for crashes).
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	err = client.Subscribe(mqtt.Topics{}.AllCommands(), 1, handler)
//
// Use TLS (broker.tls) anywhere other than a local development broker.
package mqtt
