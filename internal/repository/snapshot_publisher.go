package repository

import (
	"context"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
)

// Publisher is the subset of the Kafka producer used for snapshots.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaSnapshotPublisher publishes fresh snapshots keyed by source id.
type KafkaSnapshotPublisher struct {
	p     Publisher
	topic string
}

var _ domrepo.SnapshotPublisher = (*KafkaSnapshotPublisher)(nil)

func NewKafkaSnapshotPublisher(p Publisher, topic string) *KafkaSnapshotPublisher {
	return &KafkaSnapshotPublisher{p: p, topic: topic}
}

func (k *KafkaSnapshotPublisher) PublishSnapshot(ctx context.Context, snap *models.ContentSnapshot) error {
	return k.p.Publish(ctx, k.topic, []byte(snap.SourceID), snap)
}

func (k *KafkaSnapshotPublisher) Close() error {
	return k.p.Close()
}

// NopSnapshotPublisher drops snapshots. Used when Kafka is disabled.
type NopSnapshotPublisher struct{}

var _ domrepo.SnapshotPublisher = NopSnapshotPublisher{}

func (NopSnapshotPublisher) PublishSnapshot(context.Context, *models.ContentSnapshot) error {
	return nil
}

func (NopSnapshotPublisher) Close() error { return nil }
