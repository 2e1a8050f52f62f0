package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meteobot/meteobot/internal/forecast"
	"github.com/meteobot/meteobot/internal/presenter"
	"github.com/meteobot/meteobot/internal/registry"
)

var validate = validator.New()

const usageText = "Usage: /forecast <lat> <lon> <timezone> <YYYY-MM-DD> <start_hr> <end_hr> <models>"

const welcomeText = "🌤 Welcome!\n" +
	"Use:\n/forecast <lat> <lon> <timezone> <YYYY-MM-DD> <start_hr> <end_hr> <models>\n" +
	"Example:\n/forecast 22.26 69.40 Asia/Kolkata 2025-08-19 12 18 GFS,ICON\n" +
	"See /models"

// errUsage marks malformed or insufficient command arguments. It is answered
// with the usage text, never surfaced as an error to the user.
var errUsage = errors.New("usage error")

// Sender is the slice of the Telegram API the handler needs. Kept narrow so
// tests can capture outgoing replies without a live transport.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler dispatches incoming chat commands to the forecast pipeline and
// forwards the presenter's outputs back to the chat.
type Handler struct {
	sender     Sender
	registry   *registry.Registry
	aggregator *forecast.Aggregator
	presenter  *presenter.Presenter
	logger     *zap.Logger
}

// NewHandler wires a Handler. logger may be nil.
func NewHandler(sender Sender, reg *registry.Registry, agg *forecast.Aggregator, pres *presenter.Presenter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sender:     sender,
		registry:   reg,
		aggregator: agg,
		presenter:  pres,
		logger:     logger,
	}
}

// Run consumes updates until the channel closes or the context is cancelled.
// The chat transport delivers one update at a time per chat, so no extra
// coordination is needed here.
func (h *Handler) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes a single update to its command handler.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "start":
		h.reply(msg.Chat.ID, welcomeText)
	case "models":
		h.reply(msg.Chat.ID, "Supported models: "+strings.Join(h.registry.Names(), ", "))
	case "forecast":
		h.handleForecast(ctx, msg)
	}
}

// forecastArgs is the bound and validated form of the command arguments.
// Latitude/longitude are not range-checked: the provider enforces its own
// bounds. Hours must form a non-inverted range inside a day.
type forecastArgs struct {
	Lat       float64
	Lon       float64
	Timezone  string `validate:"required"`
	Date      string `validate:"required,datetime=2006-01-02"`
	StartHour int    `validate:"gte=0,lte=23"`
	EndHour   int    `validate:"gte=0,lte=23,gtefield=StartHour"`
}

// parseForecastArgs binds the seven positional tokens, validates them, and
// resolves the model list against the registry. Unknown model tokens are
// silently dropped; duplicates keep their first position.
func parseForecastArgs(tokens []string, reg *registry.Registry) (forecast.Request, error) {
	if len(tokens) < 7 {
		return forecast.Request{}, errUsage
	}

	lat, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return forecast.Request{}, fmt.Errorf("%w: bad latitude", errUsage)
	}
	lon, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return forecast.Request{}, fmt.Errorf("%w: bad longitude", errUsage)
	}
	startHour, err := strconv.Atoi(tokens[4])
	if err != nil {
		return forecast.Request{}, fmt.Errorf("%w: bad start hour", errUsage)
	}
	endHour, err := strconv.Atoi(tokens[5])
	if err != nil {
		return forecast.Request{}, fmt.Errorf("%w: bad end hour", errUsage)
	}

	args := forecastArgs{
		Lat:       lat,
		Lon:       lon,
		Timezone:  tokens[2],
		Date:      tokens[3],
		StartHour: startHour,
		EndHour:   endHour,
	}
	if err := validate.Struct(args); err != nil {
		return forecast.Request{}, fmt.Errorf("%w: %v", errUsage, err)
	}

	var models []string
	seen := make(map[string]bool)
	for _, tok := range strings.Split(tokens[6], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] {
			continue
		}
		if _, err := reg.Resolve(tok); err != nil {
			continue
		}
		seen[tok] = true
		models = append(models, tok)
	}
	if len(models) == 0 {
		return forecast.Request{}, forecast.ErrNoValidModels
	}

	return forecast.Request{
		Lat:       args.Lat,
		Lon:       args.Lon,
		Timezone:  args.Timezone,
		Date:      args.Date,
		StartHour: args.StartHour,
		EndHour:   args.EndHour,
		Models:    models,
	}, nil
}

// handleForecast runs the whole pipeline for one command. It is the
// outermost failure boundary: every error, expected or not, ends in a reply.
func (h *Handler) handleForecast(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log := h.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.Int64("chat_id", chatID),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("forecast handler panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			h.reply(chatID, fmt.Sprintf("Error: %v", r))
		}
	}()

	tokens := strings.Fields(msg.CommandArguments())
	req, err := parseForecastArgs(tokens, h.registry)
	if err != nil {
		switch {
		case errors.Is(err, errUsage):
			log.Info("rejected forecast command", zap.Error(err))
			h.reply(chatID, usageText)
		case errors.Is(err, forecast.ErrNoValidModels):
			h.reply(chatID, "No valid models. Use /models")
		default:
			log.Error("argument parsing failed", zap.Error(err))
			h.reply(chatID, "Error: "+err.Error())
		}
		return
	}

	log.Info("building forecast",
		zap.Float64("lat", req.Lat),
		zap.Float64("lon", req.Lon),
		zap.String("date", req.Date),
		zap.Strings("models", req.Models),
	)

	table, err := h.aggregator.Build(ctx, req)
	if err != nil {
		log.Error("aggregation failed", zap.Error(err))
		h.reply(chatID, "Error: "+err.Error())
		return
	}

	rep, err := h.presenter.Render(table)
	if err != nil {
		log.Error("render failed", zap.Error(err))
		h.reply(chatID, "Error: "+err.Error())
		return
	}

	if rep.CSV != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  "forecast.csv",
			Bytes: rep.CSV,
		})
		doc.Caption = "Forecast CSV"
		h.send(doc, log)
	}
	h.replyCode(chatID, rep.Text)

	if table.Empty() {
		return
	}
	img, err := presenter.RenderChart(table, req.Models)
	if err != nil {
		log.Error("chart render failed", zap.Error(err))
		h.reply(chatID, "Error: "+err.Error())
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  "forecast.png",
		Bytes: img,
	})
	h.send(photo, log)
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text), h.logger)
}

// replyCode sends text inside a Markdown code block so the monospace table
// alignment survives the chat client.
func (h *Handler) replyCode(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "```\n"+text+"\n```")
	msg.ParseMode = tgbotapi.ModeMarkdown
	h.send(msg, h.logger)
}

func (h *Handler) send(c tgbotapi.Chattable, log *zap.Logger) {
	if _, err := h.sender.Send(c); err != nil {
		log.Error("send failed", zap.Error(err))
	}
}
