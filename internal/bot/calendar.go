package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"slotbook/internal/model"
)

// CalendarKeyboard builds an inline keyboard for a month. Days present in
// availableDates (YYYY-MM-DD keys) are selectable; the rest render as dots.
func CalendarKeyboard(year, month int, availableDates map[string]bool) tgbotapi.InlineKeyboardMarkup {
	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(firstDay.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7 // Monday-first grid
	}
	daysInMonth := daysIn(time.Month(month), year)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", time.Month(month).String(), year), "noop"),
	})
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Mo", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Tu", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("We", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Th", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Fr", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Sa", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Su", "noop"),
	})

	day := 1
	for day <= daysInMonth {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
		for col := 1; col <= 7; col++ {
			if len(rows) == 2 && col < weekdayOffset {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			if day > daysInMonth {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			dateStr := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			label := fmt.Sprintf("%d", day)
			if !availableDates[dateStr] {
				label = "·"
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("date:%s", dateStr)))
			day++
		}
		rows = append(rows, row)
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// SlotKeyboard builds an inline keyboard offering the free slots of a day,
// three per row.
func SlotKeyboard(slots []model.FreeSlot) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	var currentRow []tgbotapi.InlineKeyboardButton
	for _, slot := range slots {
		label := fmt.Sprintf("%s–%s", slot.Start.Format("15:04"), slot.End.Format("15:04"))
		data := fmt.Sprintf("slot:%s", slot.Start.Format(time.RFC3339))
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(label, data))
		if len(currentRow) == 3 {
			rows = append(rows, currentRow)
			currentRow = nil
		}
	}
	if len(currentRow) > 0 {
		rows = append(rows, currentRow)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back:dates"),
	})
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
