package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"trivia-quiz-bot/internal/domain"
)

const (
	// maxCallbackData is Telegram's limit on callback_data, in bytes.
	maxCallbackData = 64
	literalSep      = '|'
	indexSep        = '#'
	recordText      = "Congratulations! This is your new record"
)

func questionText(p domain.Prompt) string {
	return fmt.Sprintf("Question %d/%d\n\n%s", p.Number, p.Total, p.Question.Text)
}

// answerKeyboard renders one button per answer for question p.Number.
func answerKeyboard(p domain.Prompt) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(p.Question.Answers))
	for i, answer := range p.Question.Answers {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(answer, callbackData(p.Number, i, answer)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// callbackData is "<number>|<answer>", or "<number>#<index>" when the answer
// text would push it past Telegram's limit.
func callbackData(number, index int, answer string) string {
	prefix := strconv.Itoa(number)
	if literal := prefix + string(literalSep) + answer; len(literal) <= maxCallbackData {
		return literal
	}
	return prefix + string(indexSep) + strconv.Itoa(index)
}

// parseCallback splits callback data into the question number it answers and
// a function choosing the answer text from that question.
func parseCallback(data string) (int, func(domain.Question) string, bool) {
	i := strings.IndexAny(data, string(literalSep)+string(indexSep))
	if i <= 0 {
		return 0, nil, false
	}
	number, err := strconv.Atoi(data[:i])
	if err != nil || number <= 0 {
		return 0, nil, false
	}
	token := data[i+1:]
	if data[i] == literalSep {
		return number, func(domain.Question) string { return token }, true
	}
	return number, func(q domain.Question) string {
		idx, err := strconv.Atoi(token)
		if err != nil || idx < 0 || idx >= len(q.Answers) {
			return token
		}
		return q.Answers[idx]
	}, true
}

func resultsText(r domain.QuizResult) string {
	var b strings.Builder
	b.WriteString("Quiz Finished! Here are your results:\n\n")
	for i, q := range r.Questions {
		fmt.Fprintf(&b, "Q%d: %s\n", i+1, q.Question)
		fmt.Fprintf(&b, "Your answer: %s\n", q.UserAnswer)
		fmt.Fprintf(&b, "Correct answer: %s\n\n", q.CorrectAnswer)
	}
	return strings.TrimRight(b.String(), "\n")
}

func summaryText(r domain.QuizResult) string {
	return fmt.Sprintf("You got %d out of %d questions correct!", r.CorrectCount, r.Total)
}

func comparisonText(o domain.ScoreOutcome) string {
	if !o.HasPrevious {
		return "This is the first record for this user and quiz."
	}
	return fmt.Sprintf("Previous best correct answers: %d\nCurrent correct answers: %d\nDifference in correct answers: %d",
		o.Previous, o.Current, o.Difference())
}
