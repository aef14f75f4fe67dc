package ftptest

import "strings"

// CommandHandler answers the commands of one control connection.
type CommandHandler struct {
	session *session
}

func newCommandHandler(s *session) *CommandHandler {
	return &CommandHandler{session: s}
}

// HandleCommand routes one command line to its handler.
func (h *CommandHandler) HandleCommand(line string) (quit bool) {
	cmd, args, _ := strings.Cut(line, " ")
	cmd = strings.ToUpper(cmd)

	switch cmd {
	case "USER":
		h.HandleUSER(args)
	case "PASS":
		h.HandlePASS(args)
	case "OPTS":
		h.HandleOPTS(args)
	case "QUIT":
		h.session.SendResponse(221, "Goodbye")
		return true

	case "PWD":
		h.HandlePWD()
	case "CWD":
		h.HandleCWD(args)

	case "PASV":
		h.HandlePASV()

	case "LIST", "NLST":
		h.HandleLIST(args)
	case "RETR":
		h.HandleRETR(args)
	case "STOR":
		h.HandleSTOR(args)
	case "DELE":
		h.HandleDELE(args)

	case "HELP":
		h.HandleHELP()
	case "NOOP":
		h.session.SendResponse(200, "NOOP command successful")

	default:
		h.session.SendResponse(502, "Command not implemented")
	}
	return false
}

func (h *CommandHandler) withAuth(handler func()) {
	if !h.session.authenticated {
		h.session.SendResponse(530, "Not logged in")
		return
	}
	handler()
}

func (h *CommandHandler) withValidParam(param string, handler func()) {
	if param == "" {
		h.session.SendResponse(501, "Syntax error in parameters")
		return
	}
	handler()
}
