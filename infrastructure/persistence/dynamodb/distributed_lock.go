package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"versegraph/application/ports"
)

// ErrLockHeld is returned when another owner holds an unexpired lock
var ErrLockHeld = errors.New("lock already held")

// DistributedLock provides distributed locking using DynamoDB conditional writes
type DistributedLock struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// lockRecord represents a lock record in DynamoDB
type lockRecord struct {
	PK         string // LOCK#<resource_name>
	SK         string // LOCK
	LockID     string
	Owner      string
	AcquiredAt string
	ExpiresAt  string
	TTL        int64 // Unix timestamp for DynamoDB TTL
}

// NewDistributedLock creates a new distributed lock instance
func NewDistributedLock(client API, tableName string, logger *zap.Logger) *DistributedLock {
	return &DistributedLock{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// AcquireLock attempts to acquire the lock for resourceName once
func (dl *DistributedLock) AcquireLock(ctx context.Context, resourceName, ownerID string, lockDuration time.Duration) (*Lock, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(lockDuration)

	rec := lockRecord{
		PK:         fmt.Sprintf("LOCK#%s", resourceName),
		SK:         "LOCK",
		LockID:     fmt.Sprintf("%s_%d", ownerID, now.UnixNano()),
		Owner:      ownerID,
		AcquiredAt: now.Format(time.RFC3339),
		ExpiresAt:  expiresAt.Format(time.RFC3339),
		TTL:        expiresAt.Unix(),
	}

	_, err := dl.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(dl.tableName),
		Item: map[string]types.AttributeValue{
			"PK":         &types.AttributeValueMemberS{Value: rec.PK},
			"SK":         &types.AttributeValueMemberS{Value: rec.SK},
			"LockID":     &types.AttributeValueMemberS{Value: rec.LockID},
			"Owner":      &types.AttributeValueMemberS{Value: rec.Owner},
			"AcquiredAt": &types.AttributeValueMemberS{Value: rec.AcquiredAt},
			"ExpiresAt":  &types.AttributeValueMemberS{Value: rec.ExpiresAt},
			"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.TTL)},
		},
		// an expired lock may be taken over
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: rec.AcquiredAt},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			dl.logger.Debug("Failed to acquire lock - already held",
				zap.String("resource", resourceName),
				zap.String("owner", ownerID),
			)
			return nil, fmt.Errorf("%w for resource: %s", ErrLockHeld, resourceName)
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	dl.logger.Debug("Lock acquired",
		zap.String("resource", resourceName),
		zap.String("lockID", rec.LockID),
		zap.Duration("duration", lockDuration),
	)

	return &Lock{
		distributedLock: dl,
		resourceName:    resourceName,
		lockID:          rec.LockID,
		ownerID:         ownerID,
		expiresAt:       expiresAt,
	}, nil
}

// TryAcquireLock retries AcquireLock with backoff until timeout
func (dl *DistributedLock) TryAcquireLock(ctx context.Context, resourceName, ownerID string, lockDuration, timeout time.Duration) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	retryInterval := 100 * time.Millisecond

	for {
		lock, err := dl.AcquireLock(ctx, resourceName, ownerID, lockDuration)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}
		if !time.Now().Add(retryInterval).Before(deadline) {
			return nil, fmt.Errorf("timeout acquiring lock for resource %s: %w", resourceName, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
			if retryInterval < time.Second {
				retryInterval = time.Duration(float64(retryInterval) * 1.5)
			}
		}
	}
}

// ReleaseLock deletes the lock if it is still ours
func (dl *DistributedLock) ReleaseLock(ctx context.Context, resourceName, lockID, ownerID string) error {
	_, err := dl.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dl.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", resourceName)},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LockID = :lockId AND #owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "Owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lockId": &types.AttributeValueMemberS{Value: lockID},
			":owner":  &types.AttributeValueMemberS{Value: ownerID},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			dl.logger.Warn("Lock already released or taken over",
				zap.String("resource", resourceName),
				zap.String("lockID", lockID),
			)
			return nil
		}
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Lock represents an acquired distributed lock
type Lock struct {
	distributedLock *DistributedLock
	resourceName    string
	lockID          string
	ownerID         string
	expiresAt       time.Time
}

// Release releases the lock
func (l *Lock) Release(ctx context.Context) error {
	return l.distributedLock.ReleaseLock(ctx, l.resourceName, l.lockID, l.ownerID)
}

// IsExpired checks if the lock has expired
func (l *Lock) IsExpired() bool {
	return time.Now().After(l.expiresAt)
}

// GenerationLocker serializes graph generation per user across processes
type GenerationLocker struct {
	lock    *DistributedLock
	ownerID string
	lease   time.Duration
	logger  *zap.Logger
}

var _ ports.UserLocker = (*GenerationLocker)(nil)

// NewGenerationLocker creates a locker. lease bounds how long a crashed
// holder blocks others.
func NewGenerationLocker(lock *DistributedLock, ownerID string, lease time.Duration, logger *zap.Logger) *GenerationLocker {
	return &GenerationLocker{
		lock:    lock,
		ownerID: ownerID,
		lease:   lease,
		logger:  logger,
	}
}

// Lock waits up to timeout for the user's generation lock
func (g *GenerationLocker) Lock(ctx context.Context, userID string, timeout time.Duration) (func(), error) {
	resource := "graph-generation#" + userID
	held, err := g.lock.TryAcquireLock(ctx, resource, g.ownerID, g.lease, timeout)
	if err != nil {
		return nil, err
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := held.Release(ctx); err != nil {
			g.logger.Warn("Failed to release generation lock", zap.String("userID", userID), zap.Error(err))
		}
	}, nil
}
