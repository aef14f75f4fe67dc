package ftptest

import (
	"fmt"
	"io"
	"strings"
)

// HandleUSER remembers the user name until PASS arrives.
func (h *CommandHandler) HandleUSER(name string) {
	h.session.user = name
	h.session.authenticated = false
	h.session.SendResponse(331, "Please specify the password.")
}

// HandlePASS checks the password against the user store.
func (h *CommandHandler) HandlePASS(password string) {
	if h.session.user == "" {
		h.session.SendResponse(503, "Login with USER first.")
		return
	}
	if !h.session.server.users.Authenticate(h.session.user, password) {
		h.session.SendResponse(530, "Login incorrect.")
		return
	}
	h.session.authenticated = true
	h.session.SendResponse(230, "Login successful.")
}

// HandleOPTS accepts only UTF8 ON.
func (h *CommandHandler) HandleOPTS(args string) {
	if strings.EqualFold(args, "UTF8 ON") {
		h.session.SendResponse(200, "Always in UTF8 mode.")
		return
	}
	h.session.SendResponse(501, "Option not understood.")
}

// HandlePWD prints the working directory.
func (h *CommandHandler) HandlePWD() {
	h.withAuth(func() {
		h.session.SendResponse(257, fmt.Sprintf(`"%s" is the current directory`, h.session.cwd))
	})
}

// HandleCWD changes the working directory.
func (h *CommandHandler) HandleCWD(dir string) {
	h.withAuth(func() {
		h.withValidParam(dir, func() {
			p := h.session.ResolvePath(dir)
			if !h.session.server.isDir(p) {
				h.session.SendResponse(550, "Failed to change directory.")
				return
			}
			h.session.cwd = p
			h.session.SendResponse(250, "Directory successfully changed.")
		})
	})
}

// HandlePASV opens a passive listener and advertises it.
func (h *CommandHandler) HandlePASV() {
	h.withAuth(func() {
		addr, err := h.session.listenPassive()
		if err != nil {
			h.session.SendResponse(425, "Can't open passive connection.")
			return
		}
		ip := addr.IP.To4()
		h.session.SendResponse(227, fmt.Sprintf("Entering Passive Mode (%d,%d,%d,%d,%d,%d).",
			ip[0], ip[1], ip[2], ip[3], addr.Port/256, addr.Port%256))
	})
}

// HandleLIST sends the directory listing over the data connection.
func (h *CommandHandler) HandleLIST(dir string) {
	h.withAuth(func() {
		p := h.session.cwd
		if dir != "" {
			p = h.session.ResolvePath(dir)
		}
		if !h.session.server.isDir(p) {
			h.session.closePassive()
			h.session.SendResponse(550, "Failed to open directory.")
			return
		}

		dataConn, err := h.session.OpenDataConnection()
		if err != nil {
			h.session.SendResponse(425, "Use PASV first.")
			return
		}
		h.session.SendResponse(150, "Here comes the directory listing.")
		for _, line := range h.session.server.listing(p) {
			if _, err := fmt.Fprintf(dataConn, "%s\r\n", line); err != nil {
				break
			}
		}
		dataConn.Close()
		h.session.SendResponse(226, "Directory send OK.")
	})
}

// HandleRETR sends a file over the data connection.
func (h *CommandHandler) HandleRETR(name string) {
	h.withAuth(func() {
		h.withValidParam(name, func() {
			p := h.session.ResolvePath(name)
			data, ok := h.session.server.readFile(p)
			if !ok {
				h.session.closePassive()
				h.session.SendResponse(550, "Failed to open file.")
				return
			}

			dataConn, err := h.session.OpenDataConnection()
			if err != nil {
				h.session.SendResponse(425, "Use PASV first.")
				return
			}
			h.session.SendResponse(150, fmt.Sprintf("Opening BINARY mode data connection for %s (%d bytes).", name, len(data)))
			_, err = dataConn.Write(data)
			dataConn.Close()
			if err != nil {
				h.session.SendResponse(426, "Connection closed; transfer aborted.")
				return
			}
			h.session.SendResponse(226, "Transfer complete.")
		})
	})
}

// HandleSTOR receives a file until the client closes the data connection.
func (h *CommandHandler) HandleSTOR(name string) {
	h.withAuth(func() {
		h.withValidParam(name, func() {
			p := h.session.ResolvePath(name)
			dataConn, err := h.session.OpenDataConnection()
			if err != nil {
				h.session.SendResponse(425, "Use PASV first.")
				return
			}
			h.session.SendResponse(150, "Ok to send data.")
			data, err := io.ReadAll(dataConn)
			dataConn.Close()
			if err != nil {
				h.session.SendResponse(426, "Connection closed; transfer aborted.")
				return
			}
			h.session.server.writeFile(p, data)
			h.session.SendResponse(226, "Transfer complete.")
		})
	})
}

// HandleDELE removes a file.
func (h *CommandHandler) HandleDELE(name string) {
	h.withAuth(func() {
		h.withValidParam(name, func() {
			if !h.session.server.removeFile(h.session.ResolvePath(name)) {
				h.session.SendResponse(550, "Delete operation failed.")
				return
			}
			h.session.SendResponse(250, "Delete operation successful.")
		})
	})
}

// HandleHELP sends the configured help text.
func (h *CommandHandler) HandleHELP() {
	h.session.SendLines(h.session.server.help...)
}
