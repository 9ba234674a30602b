package at

import "fmt"

const (
	// Terminal Control
	CRLF   = "\r\n"
	LF     = "\n"
	Prompt = ">"

	// Response Codes
	OK       = "OK"
	ERROR    = "ERROR"
	Ready    = "ready"
	SendOK   = "SEND OK"
	SendFail = "SEND FAIL"

	// Tagged lines
	Status = "STATUS:"
	IPD    = "+IPD"

	// URCs (Unsolicited Result Codes)
	UrcWifi   = "WIFI "
	UrcClosed = "CLOSED"

	// StatusNoConnection is the CIPSTATUS code reported when the station
	// is not associated with an access point.
	StatusNoConnection = "STATUS:5"

	// Commands
	CmdRestore     = "AT+RESTORE"
	CmdEchoOff     = "ATE0"
	CmdStationMode = "AT+CWMODE=1"
	CmdStatus      = "AT+CIPSTATUS"
)

// JoinAP builds the command that associates the station with an access point.
func JoinAP(ssid, password string) string {
	return fmt.Sprintf(`AT+CWJAP="%s","%s"`, ssid, password)
}

// StartTCP builds the command that opens a single TCP connection.
func StartTCP(host string, port int) string {
	return fmt.Sprintf(`AT+CIPSTART="TCP","%s",%d`, host, port)
}

// SendLength builds the command announcing n payload bytes.
func SendLength(n int) string {
	return fmt.Sprintf("AT+CIPSEND=%d", n)
}

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output (STATUS:2 ...)
	TypePrompt                     // CIPSEND input prompt
)

func (t ResponseType) String() string {
	switch t {
	case TypeFinal:
		return "final"
	case TypeURC:
		return "urc"
	case TypeData:
		return "data"
	case TypePrompt:
		return "prompt"
	default:
		return fmt.Sprintf("ResponseType(%d)", int(t))
	}
}
