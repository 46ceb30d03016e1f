package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dogspotter/internal/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// apiLogger routes the Telegram library's own log lines (polling failures
// and retries) into the structured logger instead of stderr.
type apiLogger struct {
	logger logging.Logger
}

// NewAPILogger adapts logger for tgbotapi.SetLogger. logger is expected to
// mask the bot token: the library prints request URLs that contain it.
func NewAPILogger(logger logging.Logger) tgbotapi.BotLogger {
	return apiLogger{logger: logger.With("module", "telegram")}
}

func (l apiLogger) Println(v ...any) {
	l.logger.Warn(context.Background(), strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l apiLogger) Printf(format string, v ...any) {
	l.logger.Warn(context.Background(), strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}
