package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// NewPubSubClient creates a Pub/Sub client for the project
func NewPubSubClient(ctx context.Context, projectID, credentialsFile string) (*pubsub.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}
	return client, nil
}

// TopicName extracts the short topic name from a full resource name
// (projects/p/topics/name).
func TopicName(name string) string {
	if parts := strings.Split(name, "/"); len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return name
}

// PubSubPublisher publishes task events to a Pub/Sub topic
type PubSubPublisher struct {
	topic *pubsub.Topic
}

func NewPubSubPublisher(client *pubsub.Client, topicName string) *PubSubPublisher {
	return &PubSubPublisher{topic: client.Topic(TopicName(topicName))}
}

func (p *PubSubPublisher) Publish(ctx context.Context, event TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"kind":   string(event.Kind),
			"userId": event.UserID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Stop flushes pending messages
func (p *PubSubPublisher) Stop() {
	p.topic.Stop()
}

// Subscriber applies task events received from Pub/Sub
type Subscriber struct {
	client    *pubsub.Client
	applier   *Applier
	topicName string
	subName   string
}

func NewSubscriber(client *pubsub.Client, topicName string, applier *Applier) *Subscriber {
	topicName = TopicName(topicName)
	return &Subscriber{
		client:    client,
		applier:   applier,
		topicName: topicName,
		subName:   topicName + "-sub", // Convention: topic-sub
	}
}

// Start blocks receiving messages until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting event subscriber with topic: %s, subscription: %s", s.topicName, s.subName)

	sub, err := s.ensureSubscription(ctx)
	if err != nil {
		log.Printf("[PubSub] %v", err)
		return
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if err := s.handleMessage(ctx, msg.Data); err != nil {
			log.Printf("[PubSub] Dropping event: %v", err)
		}
		// Stats are best effort; a failed event is not redelivered.
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Subscriber) ensureSubscription(ctx context.Context) (*pubsub.Subscription, error) {
	sub := s.client.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("error checking subscription existence: %w", err)
	}
	if exists {
		return sub, nil
	}

	topic := s.client.Topic(s.topicName)
	topicExists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("error checking topic existence: %w", err)
	}
	if !topicExists {
		if topic, err = s.client.CreateTopic(ctx, s.topicName); err != nil {
			return nil, fmt.Errorf("failed to create topic: %w", err)
		}
		log.Printf("[PubSub] Created topic: %s", s.topicName)
	}

	sub, err = s.client.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	log.Printf("[PubSub] Created subscription: %s", s.subName)
	return sub, nil
}

func (s *Subscriber) handleMessage(ctx context.Context, data []byte) error {
	var event TaskEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return s.applier.Apply(ctx, event)
}
