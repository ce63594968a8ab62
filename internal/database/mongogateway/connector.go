package mongogateway

import (
	"context"
	"github.com/gaussfff/momitroll/internal/logger"
	"github.com/gaussfff/momitroll/internal/retry"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"time"
)

const (
	DefaultConnectionAttempts    = 3
	DefaultConnectionTimeout     = 10 * time.Second
	DefaultConnectionAttemptStep = 2 * time.Second
)

type CloserFunc func(ctx context.Context) error

type ConnectOptions struct {
	URI         string
	Database    string
	MaxAttempts int
	MaxTimeout  time.Duration
	RetryStep   time.Duration
}

func NewDefaultConnectOptions(uri, database string) *ConnectOptions {
	return &ConnectOptions{
		URI:         uri,
		Database:    database,
		MaxAttempts: DefaultConnectionAttempts,
		MaxTimeout:  DefaultConnectionTimeout,
		RetryStep:   DefaultConnectionAttemptStep,
	}
}

// Connect opens the single client used for the whole run and pings the server,
// retrying the ping with an incremental delay
func Connect(ctx context.Context, lg logger.Logger, o *ConnectOptions) (*mongo.Database, CloserFunc, error) {
	if o.Database == "" {
		return nil, nil, errors.New("database name is not specified")
	}

	clientOpts := options.Client().
		ApplyURI(o.URI).
		SetConnectTimeout(o.MaxTimeout).
		SetServerSelectionTimeout(o.MaxTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not create mongo client")
	}

	closer := func(ctx context.Context) error {
		if err := client.Disconnect(ctx); err != nil {
			return errors.Wrap(err, "could not disconnect from mongo")
		}
		return nil
	}

	policy := retry.Policy{Step: o.RetryStep, MaxAttempts: o.MaxAttempts}
	err = retry.Do(ctx, policy, func(attempt int) error {
		lg.Debugf("pinging mongo, attempt %d of %d", attempt, o.MaxAttempts)

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			if ctx.Err() != nil {
				return err
			}

			return retry.Retryable(errors.Wrap(err, "db ping failed"), attempt)
		}

		return nil
	})

	if err != nil {
		_ = closer(context.Background())
		return nil, nil, errors.Wrap(err, "could not establish mongo connection")
	}

	return client.Database(o.Database), closer, nil
}
