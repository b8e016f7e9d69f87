package mail

type AlertEmailData struct {
	Provider  string
	Operation string
	AccountID string
	Code      string
	Message   string
	At        string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}
