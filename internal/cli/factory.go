package cli

import (
	"context"
	"github.com/gaussfff/momitroll"
	"github.com/gaussfff/momitroll/internal/database/mongogateway"
	"github.com/gaussfff/momitroll/internal/logger"
)

// NewController resolves credentials, connects to mongo once for the whole run
// and builds a controller that owns the connection
func NewController(ctx context.Context, cfg Config, lg logger.Logger) (*momitroll.Controller, momitroll.CloserFunc, error) {
	username, password, err := cfg.Credentials()
	if err != nil {
		return nil, nil, err
	}

	lg.Debugf("connecting to mongo at %s:%d, database %s", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)

	db, closer, err := mongogateway.Connect(ctx, lg, cfg.ConnectOptions(username, password))
	if err != nil {
		return nil, nil, err
	}

	ctrl, ctrlCloser, err := momitroll.New(
		momitroll.WithLogger(lg),
		momitroll.UseLocalFolder(cfg.Migration.Dir),
		momitroll.UseMongo(
			db,
			momitroll.WithChangelogCollection(cfg.ChangelogCollection()),
			momitroll.WithMongoCloser(closer),
		),
	)

	if err != nil {
		_ = closer(context.Background())
		return nil, nil, err
	}

	return ctrl, ctrlCloser, nil
}
