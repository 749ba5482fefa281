package telegram

import "strconv"

// Update is one item of the getUpdates result. Only the update types the
// bot subscribes to are modeled.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound or outbound chat message.
type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// User is a Telegram account.
type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// IDString returns the account ID in the string form the store keys on.
func (u User) IDString() string {
	return strconv.FormatInt(u.ID, 10)
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// IDString returns the chat ID in the string form the store keys on.
func (c Chat) IDString() string {
	return strconv.FormatInt(c.ID, 10)
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// InlineKeyboardMarkup is an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one button of an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

// SingleButton builds a one-button keyboard.
func SingleButton(text, callbackData string) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: text, CallbackData: callbackData}},
		},
	}
}

// SendOptions configures a text message send.
type SendOptions struct {
	ReplyTo   int
	ParseMode string
	Markup    *InlineKeyboardMarkup
}

// MediaOptions configures a media upload.
type MediaOptions struct {
	Caption   string
	Thumbnail string
	ReplyTo   int
	Markup    *InlineKeyboardMarkup
}
