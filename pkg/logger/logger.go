package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with the service's structured log helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter creates a logger writing to w. Text output in gin debug mode,
// JSON otherwise.
func NewWithWriter(w io.Writer) *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithVenue scopes the logger to one venue session
func (l *Logger) WithVenue(venueKey string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("venue_key", venueKey))}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
	)
}

// Session logging methods

func (l *Logger) LogSongStarted(ctx context.Context, venueKey, spotID, songName string) {
	l.Logger.InfoContext(ctx,
		"Song Started",
		slog.String("venue_key", venueKey),
		slog.String("spot_id", spotID),
		slog.String("song", songName),
	)
}

func (l *Logger) LogSongCompleted(ctx context.Context, venueKey, spotID, songName string, elapsed int) {
	l.Logger.InfoContext(ctx,
		"Song Completed",
		slog.String("venue_key", venueKey),
		slog.String("spot_id", spotID),
		slog.String("song", songName),
		slog.Int("elapsed_seconds", elapsed),
	)
}

func (l *Logger) LogTimeUp(ctx context.Context, venueKey, spotID, songName string) {
	l.Logger.WarnContext(ctx,
		"Time Is Up",
		slog.String("venue_key", venueKey),
		slog.String("spot_id", spotID),
		slog.String("song", songName),
	)
}

func (l *Logger) LogSongBoosted(ctx context.Context, venueKey, spotID, songName string) {
	l.Logger.InfoContext(ctx,
		"Song Boosted",
		slog.String("venue_key", venueKey),
		slog.String("spot_id", spotID),
		slog.String("song", songName),
	)
}

func (l *Logger) LogSeatPaid(ctx context.Context, venueKey, spotID string, songs int) {
	l.Logger.InfoContext(ctx,
		"Seat Paid",
		slog.String("venue_key", venueKey),
		slog.String("spot_id", spotID),
		slog.Int("songs", songs),
	)
}

// LogPersistenceFailure logs a save or load that did not reach the store
func (l *Logger) LogPersistenceFailure(ctx context.Context, venueKey, op string, err error) {
	l.Logger.ErrorContext(ctx,
		"Persistence Failure",
		slog.String("venue_key", venueKey),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}

// Security logging methods

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// InfoWithContext logs an info message with fields
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with fields
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

var defaultLogger = New()

// GetDefault returns the process logger
func GetDefault() *Logger {
	return defaultLogger
}
