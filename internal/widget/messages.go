package widget

// Messages holds every fixed display string the widget writes.
type Messages struct {
	NotConfigured   string
	Loading         string
	LoadErrorPrefix string

	Title         string
	UpdatedPrefix string
	Empty         string

	UntitledClass string
	Canceled      string
	Online        string

	TimePrefix  string
	UnknownTime string

	RoomPrefix     string
	StaffPrefix    string
	PlaceSeparator string
	NoValue        string
}

// EnglishMessages is the default message set.
var EnglishMessages = Messages{
	NotConfigured:   "Widget: data-api-base / data-start-date / data-end-date are not set",
	Loading:         "Loading schedule...",
	LoadErrorPrefix: "Load error: ",

	Title:         "Schedule",
	UpdatedPrefix: "Updated: ",
	Empty:         "No classes in the selected period.",

	UntitledClass: "Class",
	Canceled:      "Canceled",
	Online:        "Online",

	UnknownTime: "?",

	PlaceSeparator: " · ",
	NoValue:        "—",
}

// RussianMessages reproduces the strings of the embeddable script the
// widget markup was first designed for.
var RussianMessages = Messages{
	NotConfigured:   "Виджет: не заданы data-api-base / data-start-date / data-end-date",
	Loading:         "Загрузка расписания...",
	LoadErrorPrefix: "Ошибка загрузки: ",

	Title:         "Расписание",
	UpdatedPrefix: "Обновлено: ",
	Empty:         "Нет занятий в выбранном периоде.",

	UntitledClass: "Занятие",
	Canceled:      "Отменено",
	Online:        "Онлайн",

	TimePrefix:  "Время: ",
	UnknownTime: "?",

	RoomPrefix:     "Зал: ",
	StaffPrefix:    "Тренер: ",
	PlaceSeparator: " · ",
	NoValue:        "—",
}

// MessagesFor returns the message set for a language code ("en", "ru").
// Unknown codes get English.
func MessagesFor(lang string) Messages {
	if lang == "ru" {
		return RussianMessages
	}
	return EnglishMessages
}
