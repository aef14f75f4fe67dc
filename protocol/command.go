package protocol

// Verb is one of the FTP commands the client knows how to send.
type Verb int

const (
	VerbOPTS Verb = iota
	VerbUSER
	VerbPASS
	VerbHELP
	VerbRETR
	VerbNLST
	VerbPASV
	VerbSTOR
	VerbCWD
	VerbDELE
	VerbPWD
	VerbLIST
)

var verbNames = [...]string{
	VerbOPTS: "OPTS",
	VerbUSER: "USER",
	VerbPASS: "PASS",
	VerbHELP: "HELP",
	VerbRETR: "RETR",
	VerbNLST: "NLST",
	VerbPASV: "PASV",
	VerbSTOR: "STOR",
	VerbCWD:  "CWD",
	VerbDELE: "DELE",
	VerbPWD:  "PWD",
	VerbLIST: "LIST",
}

// String returns the wire form of the verb.
func (v Verb) String() string {
	if v < 0 || int(v) >= len(verbNames) {
		return "UNKNOWN"
	}
	return verbNames[v]
}

// Command is a verb with an optional argument.
type Command struct {
	Verb Verb
	Arg  string
}

// Cmd builds a command. An empty arg means the command has no argument.
func Cmd(v Verb, arg ...string) Command {
	c := Command{Verb: v}
	if len(arg) > 0 {
		c.Arg = arg[0]
	}
	return c
}

// Line returns the command as sent, without the line terminator.
func (c Command) Line() string {
	if c.Arg == "" {
		return c.Verb.String()
	}
	return c.Verb.String() + " " + c.Arg
}

// String is Line with the PASS argument masked, for logs.
func (c Command) String() string {
	if c.Verb == VerbPASS && c.Arg != "" {
		return "PASS ****"
	}
	return c.Line()
}
