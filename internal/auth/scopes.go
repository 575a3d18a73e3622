package auth

// Scopes are the Google OAuth scopes requested when a user links their
// account. The set is fixed: every linked account grants the bot access to
// calendar, drive, the photos library, mail (read, modify, send) and
// Meet space creation.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/photoslibrary",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/meetings.space.created",
}
