package polls

import (
	"fmt"
	"strings"
	"time"

	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/services"
)

const (
	ActionShiftYes     = "poll_yes"
	ActionShiftNo      = "poll_no"
	ActionShiftResults = "poll_results"
	ActionSyncYes      = "sync_poll_yes"
	ActionSyncResults  = "sync_poll_results"
	ActionSyncClose    = "sync_poll_close"
)

const nobody = "никто"

func CallbackData(action string, chatID int64) string {
	return fmt.Sprintf("%s:%d", action, chatID)
}

func openKeyboard(p *Poll) [][]services.Button {
	if p.Purpose == models.PollPurposeSync {
		return [][]services.Button{
			{{Text: "✅ На смене", Data: CallbackData(ActionSyncYes, p.ChatID)}},
			{{Text: "📊 Результаты (Менеджеры)", Data: CallbackData(ActionSyncResults, p.ChatID)}},
			{{Text: "✅ Завершить и сохранить (Менеджеры)", Data: CallbackData(ActionSyncClose, p.ChatID)}},
		}
	}

	return [][]services.Button{
		{
			{Text: "✅ Выхожу", Data: CallbackData(ActionShiftYes, p.ChatID)},
			{Text: "❌ Не выхожу", Data: CallbackData(ActionShiftNo, p.ChatID)},
		},
		{{Text: "📊 Результаты (Менеджеры)", Data: CallbackData(ActionShiftResults, p.ChatID)}},
	}
}

func openText(p *Poll, policy Policy) string {
	deadline := fmt.Sprintf("⏱ Время на ответ: %s", minutesText(policy.InitialDeadline))

	if p.Purpose == models.PollPurposeSync {
		return fmt.Sprintf("📋 Опрос: Кто сегодня на смене?\n%s\n\n✅ На смене (%d): %s",
			deadline, len(p.Going), voterList(p.Going))
	}

	return fmt.Sprintf("📋 Опрос: Кто завтра выходит на смену?\n%s\n\n✅ Выхожу (%d): %s\n❌ Не выхожу (%d): %s",
		deadline, len(p.Going), voterList(p.Going), len(p.NotGoing), voterList(p.NotGoing))
}

func closedText(p *Poll, reason CloseReason) string {
	var header string
	switch reason {
	case CloseReasonQuorum:
		header = "📋 Опрос завершён (все сотрудники проголосовали)"
	case CloseReasonTimeout:
		header = "📋 Опрос завершён (время на ответ истекло)"
	default:
		if p.Purpose == models.PollPurposeSync {
			header = "📋 Опрос завершён (автоматически созданы смены на сегодня)"
		} else {
			header = "📋 Опрос завершён (результаты просмотрены)"
		}
	}

	return header + "\n\n" + tally(p)
}

func tally(p *Poll) string {
	if p.Purpose == models.PollPurposeSync {
		return fmt.Sprintf("✅ На смене (%d): %s", len(p.Going), voterList(p.Going))
	}

	return fmt.Sprintf("✅ Выходят (%d): %s\n❌ Не выходят (%d): %s",
		len(p.Going), voterList(p.Going), len(p.NotGoing), voterList(p.NotGoing))
}

func extendedNotice(p *Poll, policy Policy) string {
	if p.Purpose == models.PollPurposeSync {
		return fmt.Sprintf("⏳ Никто не отметился на смене. Опрос продлён на %s.", minutesText(policy.ExtensionDeadline))
	}

	return fmt.Sprintf("⏳ Никто не выбрал выход на смену. Опрос продлён на %s. Пожалуйста, хотя бы один сотрудник должен выйти.",
		minutesText(policy.ExtensionDeadline))
}

func exhaustedNotice(p *Poll) string {
	if p.Purpose == models.PollPurposeSync {
		return "❗ Никто не отметился на смене. Опрос остаётся открытым. Если нужно записать смену, отметьтесь или повторите команду /pollsync"
	}

	return "❗ По-прежнему никто не выходит. Менеджеры, пожалуйста, уточните график. Опрос остаётся открытым."
}

// RefusedNotice explains why a poll without affirmative votes stays open.
func RefusedNotice(purpose models.PollPurpose) string {
	if purpose == models.PollPurposeSync {
		return "Никто не отметился на смене. Опрос остаётся открытым."
	}

	return "❗ Никто не выходит на смену. Опрос остаётся открытым. Пожалуйста, измените решение: хотя бы один сотрудник должен выйти."
}

// ResultsText renders the detailed per-voter results shown to managers.
func ResultsText(p Poll) string {
	if p.Purpose == models.PollPurposeSync {
		return fmt.Sprintf("📊 Результаты опроса \"Кто сегодня на смене?\":\n\n✅ На смене (%d): %s", len(p.Going), voterList(p.Going))
	}

	return fmt.Sprintf("📊 Детальные результаты:\n\n✅ Выходят (%d):\n%s\n\n❌ Не выходят (%d):\n%s",
		len(p.Going), voterColumn(p.Going), len(p.NotGoing), voterColumn(p.NotGoing))
}

func voterList(voters []string) string {
	if len(voters) == 0 {
		return nobody
	}

	mentions := make([]string, 0, len(voters))
	for _, voter := range voters {
		mentions = append(mentions, "@"+voter)
	}
	return strings.Join(mentions, ", ")
}

func voterColumn(voters []string) string {
	if len(voters) == 0 {
		return "  (" + nobody + ")"
	}

	lines := make([]string, 0, len(voters))
	for _, voter := range voters {
		lines = append(lines, "  @"+voter)
	}
	return strings.Join(lines, "\n")
}

func minutesText(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)

	word := "минут"
	switch {
	case minutes%100 >= 11 && minutes%100 <= 14:
	case minutes%10 == 1:
		word = "минуту"
	case minutes%10 >= 2 && minutes%10 <= 4:
		word = "минуты"
	}

	return fmt.Sprintf("%d %s", minutes, word)
}
