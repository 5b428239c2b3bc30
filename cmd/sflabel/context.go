package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"sflabel/internal/config"
	"sflabel/internal/consensus"
	"sflabel/internal/dataset"
	"sflabel/internal/identity"
	"sflabel/internal/labelstore"
	"sflabel/internal/logging"
	"sflabel/internal/session"
	"sflabel/internal/workqueue"
)

type commandContext struct {
	configFlag *string
	uidFlag    *string
	emailFlag  *string
	nameFlag   *string
	roleFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, uidFlag, emailFlag, nameFlag, roleFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		uidFlag:    uidFlag,
		emailFlag:  emailFlag,
		nameFlag:   nameFlag,
		roleFlag:   roleFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) hasIdentity() bool {
	return (c.uidFlag != nil && strings.TrimSpace(*c.uidFlag) != "") ||
		(c.emailFlag != nil && strings.TrimSpace(*c.emailFlag) != "")
}

func (c *commandContext) annotator() (identity.Annotator, error) {
	var uid, email, name, role string
	if c.uidFlag != nil {
		uid = *c.uidFlag
	}
	if c.emailFlag != nil {
		email = *c.emailFlag
	}
	if c.nameFlag != nil {
		name = *c.nameFlag
	}
	if c.roleFlag != nil {
		role = *c.roleFlag
	}
	annot, err := identity.Resolve(uid, email, name, role)
	if err != nil {
		return identity.Annotator{}, fmt.Errorf("resolve annotator identity: pass --uid or --email: %w", err)
	}
	return annot, nil
}

// stores bundles everything a session-driven command needs.
type stores struct {
	cfg    *config.Config
	snap   *dataset.Snapshot
	labels *labelstore.Store
	queues *workqueue.Store
	logger *slog.Logger
}

// requiredQuorum derives the completion quorum from the config. The raw
// override is 0 under the default config, meaning derive; passing it to
// Evaluate directly would make the quorum check vacuous.
func (st *stores) requiredQuorum() int {
	return consensus.DeriveRequired(st.cfg.Cap(), st.cfg.RequiredUnique())
}

func (c *commandContext) withStores(fn func(*stores) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	snap, err := dataset.Load(cfg.Paths.DatasetPath)
	if err != nil {
		return fmt.Errorf("load dataset snapshot: %w", err)
	}
	labelStore, err := labelstore.Open(cfg)
	if err != nil {
		return err
	}
	defer labelStore.Close()
	queueStore, err := workqueue.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer queueStore.Close()

	return fn(&stores{cfg: cfg, snap: snap, labels: labelStore, queues: queueStore, logger: logger})
}

func (c *commandContext) newSession(ctx context.Context, st *stores) (*session.Session, error) {
	annot, err := c.annotator()
	if err != nil {
		return nil, err
	}
	return session.New(ctx, annot, st.snap, st.labels, st.queues,
		st.cfg.Cap(), st.cfg.Annotation.RequiredUniqueForCompletion, st.logger)
}

func (c *commandContext) withSession(ctx context.Context, fn func(*stores, *session.Session) error) error {
	return c.withStores(func(st *stores) error {
		sess, err := c.newSession(ctx, st)
		if err != nil {
			return err
		}
		return fn(st, sess)
	})
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
