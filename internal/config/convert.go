package config

import (
	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol/frame"
)

const defaultDatabase = model.DefaultDatabase

func defaultLimits() frame.Limits { return frame.DefaultLimits() }

func (c Config) DatabaseID() model.DatabaseID {
	return model.NewDatabaseID(c.Database.Project, c.Database.Database)
}

func (c Config) Limits() frame.Limits {
	return frame.Limits{
		MaxMessageBytes: c.Frame.MaxMessageBytes,
		SegmentBytes:    c.Frame.SegmentBytes,
	}
}
