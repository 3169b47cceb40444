package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// TopicClient is the in-process publish/subscribe surface used for
// migration progress notifications.
type TopicClient interface {
	Subscribe(topic string, cb func(messages <-chan *message.Message)) error
	Publish(topic string, msg *message.Message) error
}

var ChannelPubSubDefaultConfig = gochannel.Config{
	OutputChannelBuffer:            10,
	Persistent:                     true,
	BlockPublishUntilSubscriberAck: false,
}

type ChannelPubSub struct {
	Client *gochannel.GoChannel
}

// NewPubSubHandlerChannel builds a TopicClient backed by Watermill's
// go-channel implementation.
func NewPubSubHandlerChannel(config gochannel.Config) ChannelPubSub {
	if config == (gochannel.Config{}) {
		// Use default config
		config = ChannelPubSubDefaultConfig
	}

	ps := gochannel.NewGoChannel(
		config,
		watermill.NewStdLogger(false, false),
	)

	return ChannelPubSub{
		Client: ps,
	}
}

func (p ChannelPubSub) Subscribe(topic string, cb func(messages <-chan *message.Message)) error {
	messages, err := p.Client.Subscribe(context.Background(), topic)
	if err != nil {
		zap.S().Errorf("Could not subscribe to topic %s", topic)
		return err
	}

	go cb(messages)
	return nil
}

func (p ChannelPubSub) Publish(topic string, msg *message.Message) error {
	err := p.Client.Publish(topic, msg)
	if err != nil {
		zap.S().Errorf("Could not publish to topic %s", topic)
		return err
	}

	return nil
}
