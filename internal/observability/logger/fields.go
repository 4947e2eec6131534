package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/usercards/internal/util"
)

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Route(v string) zap.Field     { return zap.String("route", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }

// ─── Negocio ───

// UserID crea un campo para el ID numérico del usuario.
func UserID(v int64) zap.Field { return zap.Int64("user_id", v) }

// CardID crea un campo para el ID numérico de la tarjeta.
func CardID(v int64) zap.Field { return zap.Int64("card_id", v) }

// Identity crea un campo para la identidad resuelta del token (enmascarada).
func Identity(v string) zap.Field { return zap.String("identity", util.MaskEmail(v)) }

// Email crea un campo con el email enmascarado.
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }

// CardNumber crea un campo con el número de tarjeta enmascarado (últimos 4).
func CardNumber(v string) zap.Field { return zap.String("card_number", util.MaskCardNumber(v)) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Key(v string) zap.Field       { return zap.String("key", v) }
func Err(err error) zap.Field      { return zap.Error(err) }
func Count(v int) zap.Field        { return zap.Int("count", v) }

func Any(key string, v any) zap.Field     { return zap.Any(key, v) }
func String(key, v string) zap.Field      { return zap.String(key, v) }
func Int(key string, v int) zap.Field     { return zap.Int(key, v) }
func Int64(key string, v int64) zap.Field { return zap.Int64(key, v) }
func Bool(key string, v bool) zap.Field   { return zap.Bool(key, v) }
