package logger

import (
	"time"

	"go.uber.org/zap"
)

// Typed field helpers so call sites agree on key names.

// HTTP fields.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Domain fields.

func LeagueID(v string) zap.Field { return zap.String("league_id", v) }
func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func MatchID(v string) zap.Field  { return zap.String("match_id", v) }
func QueueID(v string) zap.Field  { return zap.String("queue_id", v) }
func Scope(v string) zap.Field    { return zap.String("scope", v) }

// System fields.

func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Component(v string) zap.Field { return zap.String("component", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// Generic fields.

func Count(v int) zap.Field          { return zap.Int("count", v) }
func Key(v string) zap.Field         { return zap.String("key", v) }
func String(k, v string) zap.Field   { return zap.String(k, v) }
func Bool(k string, v bool) zap.Field { return zap.Bool(k, v) }
