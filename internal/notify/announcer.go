// Package notify publishes completed transcription records to an MQTT
// broker so downstream consumers can react without polling the API.
package notify

import (
	"encoding/json"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/snarg/scribe-relay/internal/store"
)

// Announcer is a fire-and-forget MQTT publisher. Publish failures are
// logged, never surfaced to the request that produced the record.
type Announcer struct {
	conn      mqtt.Client
	topic     string
	connected atomic.Bool
	log       zerolog.Logger
}

type Options struct {
	BrokerURL string
	ClientID  string
	Topic     string
	Username  string
	Password  string
	Log       zerolog.Logger
}

func Connect(opts Options) (*Announcer, error) {
	a := &Announcer{
		topic: opts.Topic,
		log:   opts.Log,
	}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOrderMatters(false).
		SetOnConnectHandler(a.onConnect).
		SetConnectionLostHandler(a.onConnectionLost)

	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}

	a.conn = mqtt.NewClient(clientOpts)
	token := a.conn.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}

	return a, nil
}

// TranscriptionCompleted publishes one persisted record as JSON. The token
// is awaited off the request path.
func (a *Announcer) TranscriptionCompleted(rec store.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		a.log.Error().Err(err).Int64("id", rec.ID).Msg("encode announcement failed")
		return
	}

	token := a.conn.Publish(a.topic, 0, false, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			a.log.Warn().Err(err).Int64("id", rec.ID).Msg("announce failed")
			return
		}
		a.log.Debug().Int64("id", rec.ID).Str("topic", a.topic).Msg("transcription announced")
	}()
}

func (a *Announcer) onConnect(_ mqtt.Client) {
	a.connected.Store(true)
	a.log.Info().Str("topic", a.topic).Msg("mqtt connected")
}

func (a *Announcer) onConnectionLost(_ mqtt.Client, err error) {
	a.connected.Store(false)
	a.log.Warn().Err(err).Msg("mqtt connection lost, will auto-reconnect")
}

func (a *Announcer) IsConnected() bool {
	return a.connected.Load()
}

func (a *Announcer) Close() {
	a.log.Info().Msg("disconnecting mqtt announcer")
	a.conn.Disconnect(1000)
}
