package telegram

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
)

const (
	welcomeText   = "Welcome to Quiz Bot! Use /quiz to start a quiz."
	unknownText   = "Command not recognized. Please use /start or /quiz."
	noSessionText = "Please start a new quiz with /quiz."
)

// API is the subset of *tgbotapi.BotAPI the bot needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Options bounds the blocking calls made while handling one update.
type Options struct {
	FetchTimeout time.Duration
	ScoreTimeout time.Duration
}

// Bot maps chat updates onto quiz operations. The chat id is the quiz identity.
type Bot struct {
	api    API
	quiz   *app.QuizService
	scores *app.ScoreService
	opts   Options
	wg     sync.WaitGroup
}

func NewBot(api API, quiz *app.QuizService, scores *app.ScoreService, opts Options) *Bot {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.ScoreTimeout <= 0 {
		opts.ScoreTimeout = 5 * time.Second
	}
	return &Bot{api: api, quiz: quiz, scores: scores, opts: opts}
}

// Run handles updates concurrently until ctx is canceled or the channel closes,
// then waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate processes a single update. Panics are logged and swallowed so
// one bad update cannot take the process down.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bot] panic handling update %d: %v\n%s", update.UpdateID, r, debug.Stack())
		}
	}()

	switch {
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch commandOf(msg.Text) {
	case "/start":
		b.sendText(chatID, welcomeText)
	case "/quiz":
		b.startQuiz(ctx, chatID)
	default:
		b.sendText(chatID, unknownText)
	}
}

func (b *Bot) startQuiz(ctx context.Context, chatID int64) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.FetchTimeout)
	defer cancel()

	prompt, err := b.quiz.Start(ctx, chatID)
	if err != nil {
		log.Printf("[bot] start quiz for chat %d: %v", chatID, err)
		b.sendText(chatID, errorText(err))
		return
	}
	b.sendQuestion(chatID, prompt)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		b.ackCallback(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID

	number, pick, ok := parseCallback(cb.Data)
	if !ok {
		b.ackCallback(cb.ID, "")
		return
	}

	outcome, err := b.quiz.Answer(ctx, chatID, number, pick)
	switch {
	case errors.Is(err, domain.ErrStaleAnswer):
		b.ackCallback(cb.ID, "")
		return
	case errors.Is(err, domain.ErrNoActiveSession):
		// Taps on buttons of a finished or lost quiz.
		b.ackCallback(cb.ID, noSessionText)
		return
	case err != nil:
		b.ackCallback(cb.ID, "")
		b.sendText(chatID, errorText(err))
		return
	}
	b.ackCallback(cb.ID, "")

	removeMarkup := tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := b.api.Request(removeMarkup); err != nil {
		log.Printf("[bot] remove keyboard: %v", err)
	}

	if !outcome.Done {
		b.sendQuestion(chatID, outcome.Next)
		return
	}
	if outcome.Result == nil {
		log.Printf("[bot] BUG: quiz for chat %d finished without a result", chatID)
		return
	}
	b.finishQuiz(ctx, chatID, *outcome.Result)
}

func (b *Bot) finishQuiz(ctx context.Context, chatID int64, result domain.QuizResult) {
	b.sendText(chatID, resultsText(result))
	b.sendText(chatID, summaryText(result))

	ctx, cancel := context.WithTimeout(ctx, b.opts.ScoreTimeout)
	defer cancel()
	outcome, err := b.scores.Record(ctx, result)
	if err != nil {
		log.Printf("[bot] persist score for chat %d: %v", chatID, err)
		return
	}
	b.sendText(chatID, comparisonText(outcome))
	if outcome.Saved {
		b.sendText(chatID, recordText)
	}
}

// ackCallback stops the client's loading indicator; text, if any, shows as a notification.
func (b *Bot) ackCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Printf("[bot] answer callback: %v", err)
	}
}

func (b *Bot) sendQuestion(chatID int64, prompt domain.Prompt) {
	msg := tgbotapi.NewMessage(chatID, questionText(prompt))
	msg.ReplyMarkup = answerKeyboard(prompt)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("[bot] send question: %v", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("[bot] send message: %v", err)
	}
}

// commandOf extracts the lower-cased command, dropping any @botname suffix.
func commandOf(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return cmd
}

func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoActiveSession):
		return noSessionText
	case errors.Is(err, domain.ErrFetch):
		return "An error occurred: no quiz questions available. Please try again later."
	case errors.Is(err, context.DeadlineExceeded):
		return "An error occurred: the request timed out. Please try again."
	default:
		return "An error occurred: " + err.Error()
	}
}
