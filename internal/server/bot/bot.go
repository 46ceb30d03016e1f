// Package bot is the Telegram front end: it turns chat updates into intake
// submissions and stats queries and answers with fixed texts.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/httpx"
	"github.com/dmitrijs2005/dogspotter/internal/logging"
	"github.com/dmitrijs2005/dogspotter/internal/server/intake"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Intake is implemented by *intake.Pipeline.
type Intake interface {
	Admit(ctx context.Context, identity int64) (intake.Outcome, bool)
	HandleSubmission(ctx context.Context, sub intake.Submission) intake.Outcome
	Stats(ctx context.Context, identity int64) (models.Stats, error)
}

type Options struct {
	// Workers bounds the number of updates handled at once.
	Workers int
	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int
	// MaxPhotoSize caps downloads, in bytes.
	MaxPhotoSize int64
}

func DefaultOptions() Options {
	return Options{Workers: 8, PollTimeout: 60, MaxPhotoSize: 20 << 20}
}

var now = time.Now

type Bot struct {
	api    API
	intake Intake
	client *http.Client
	opts   Options
	logger logging.Logger
}

func New(api API, in Intake, client *http.Client, opts Options, logger logging.Logger) *Bot {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Bot{
		api:    api,
		intake: in,
		client: client,
		opts:   opts,
		logger: logger.With("module", "bot"),
	}
}

// Run polls updates until ctx is done and waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	g := new(errgroup.Group)
	g.SetLimit(b.opts.Workers)

	// Handlers outlive shutdown so that a photo being processed gets its reply.
	handlerCtx := context.WithoutCancel(ctx)

	b.logger.Info(ctx, "bot started", "workers", b.opts.Workers)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case upd, ok := <-updates:
			if !ok {
				break loop
			}
			g.Go(func() error {
				b.HandleUpdate(handlerCtx, upd)
				return nil
			})
		}
	}

	b.api.StopReceivingUpdates()
	err := g.Wait()
	b.logger.Info(ctx, "bot stopped")
	return err
}

// HandleUpdate dispatches one update. It never panics.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	log := b.logger.With("request_id", uuid.NewString(), "update_id", upd.UpdateID, "identity", identityOf(msg))
	if msg.From != nil && msg.From.UserName != "" {
		log = log.With("username", msg.From.UserName)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "panic while handling update", "panic", fmt.Sprint(r))
			text := textUnexpected
			if len(msg.Photo) == 0 {
				text = textCommandFailed
			}
			b.reply(ctx, log, msg, text, "")
		}
	}()

	switch {
	case msg.IsCommand() && msg.Command() == "start", msg.Text == buttonStart:
		b.handleStart(ctx, log, msg)
	case msg.Text == buttonStats:
		b.handleStats(ctx, log, msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, log, msg)
	default:
		log.Debug(ctx, "ignoring message")
	}
}

func identityOf(msg *tgbotapi.Message) int64 {
	if msg.From != nil {
		return msg.From.ID
	}
	return msg.Chat.ID
}

func (b *Bot) handleStart(ctx context.Context, log logging.Logger, msg *tgbotapi.Message) {
	log.Info(ctx, "start")

	out := tgbotapi.NewMessage(msg.Chat.ID, welcomeText)
	out.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonStart),
			tgbotapi.NewKeyboardButton(buttonStats),
		),
	)
	if _, err := b.api.Send(out); err != nil {
		log.Error(ctx, "failed to send welcome", "error", err)
		b.reply(ctx, log, msg, textCommandFailed, "")
	}
}

func (b *Bot) handleStats(ctx context.Context, log logging.Logger, msg *tgbotapi.Message) {
	stats, err := b.intake.Stats(ctx, identityOf(msg))
	if err != nil {
		log.Error(ctx, "failed to load stats", "error", err)
		b.reply(ctx, log, msg, textStatsFailed, "")
		return
	}
	b.reply(ctx, log, msg, formatStats(stats), tgbotapi.ModeHTML)
}

func formatStats(s models.Stats) string {
	if s.Total <= 0 {
		return textNoPhotos
	}
	pct := s.PositivePercent()
	bonus := ""
	if pct > dogLoverPercent {
		bonus = textDogLover
	}
	return fmt.Sprintf(textStatsFormat, s.Total, s.Positive, pct, bonus)
}

func (b *Bot) handlePhoto(ctx context.Context, log logging.Logger, msg *tgbotapi.Message) {
	identity := identityOf(msg)
	log.Info(ctx, "photo received")

	// sizes are sorted ascending; the last one is the original
	largest := msg.Photo[len(msg.Photo)-1]

	if out, ok := b.intake.Admit(ctx, identity); !ok {
		log.Info(ctx, "photo rejected before download", "outcome", out.Kind.String())
		b.reply(ctx, log, msg, outcomeText(out.Kind), "")
		return
	}

	fileURL, err := b.api.GetFileDirectURL(largest.FileID)
	if err != nil {
		log.Error(ctx, "failed to resolve file", "file_id", largest.FileID, "error", httpx.StripURL(err))
		b.reply(ctx, log, msg, textSaveFailed, "")
		return
	}

	content, err := download(ctx, b.client, fileURL, b.opts.MaxPhotoSize)
	if err != nil {
		log.Error(ctx, "failed to download photo", "file_id", largest.FileID, "error", err)
		b.reply(ctx, log, msg, textSaveFailed, "")
		return
	}

	name, err := fileName(identity, fileExt(fileURL))
	if err != nil {
		log.Error(ctx, "failed to build file name", "error", err)
		b.reply(ctx, log, msg, textServerError, "")
		return
	}

	out := b.intake.HandleSubmission(ctx, intake.Submission{
		Identity: identity,
		Content:  content,
		Name:     name,
	})
	log.Info(ctx, "photo processed",
		"outcome", out.Kind.String(),
		"accepted", out.Kind.Accepted(),
		"submission_id", out.SubmissionID,
		"suspended", out.Suspended,
	)

	b.reply(ctx, log, msg, outcomeText(out.Kind), "")
}

func outcomeText(k intake.OutcomeKind) string {
	switch k {
	case intake.AcceptedWithDetection:
		return textSavedWithDog
	case intake.AcceptedWithoutDetection:
		return textSavedWithoutDog
	case intake.RejectedDuplicate:
		return textDuplicate
	case intake.RejectedSuspended:
		return textSuspended
	default:
		return textServerError
	}
}

// fileName builds photo_<identity>_<unix>_<rand8>.<ext>.
func fileName(identity int64, ext string) (string, error) {
	suffix, err := common.MakeRandString(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("photo_%d_%d_%s.%s", identity, now().Unix(), suffix, ext), nil
}

func (b *Bot) reply(ctx context.Context, log logging.Logger, msg *tgbotapi.Message, text, parseMode string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	out.ParseMode = parseMode
	if _, err := b.api.Send(out); err != nil {
		log.Error(ctx, "failed to send reply", "error", err)
	}
}
