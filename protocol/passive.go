package protocol

import (
	"fmt"
	"net"
	"strconv"
)

// PassiveEndpoint is the data address advertised by a PASV reply.
type PassiveEndpoint struct {
	Host string
	Port int
}

// Addr returns host:port.
func (p PassiveEndpoint) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// ParsePassiveReply decodes a reply such as
//
//	227 Entering Passive Mode (127,0,0,1,19,136).
//
// The line is split on the characters ",.()". Fields 1 to 4 are the host
// octets and fields 5 and 6 the high and low port bytes, so the example
// yields 127.0.0.1 port 19*256+136 = 5000.
func ParsePassiveReply(line string) (PassiveEndpoint, error) {
	fields := splitPassive(line)
	if len(fields) < 7 {
		return PassiveEndpoint{}, &ParseError{What: "PASV", Line: line}
	}

	var nums [6]int
	for i := range nums {
		n, err := strconv.Atoi(fields[i+1])
		if err != nil || n < 0 || n > 255 {
			return PassiveEndpoint{}, &ParseError{What: "PASV", Line: line}
		}
		nums[i] = n
	}

	return PassiveEndpoint{
		Host: fmt.Sprintf("%d.%d.%d.%d", nums[0], nums[1], nums[2], nums[3]),
		Port: nums[4]*256 + nums[5],
	}, nil
}

// splitPassive splits on the PASV separators. Empty fields between two
// separators are kept so positions stay fixed; trailing empty fields are
// dropped.
func splitPassive(line string) []string {
	var fields []string
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ',', '.', '(', ')':
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	fields = append(fields, line[start:])
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// openData negotiates a passive data connection over the control channel.
func (s *Session) openData() (*Conn, error) {
	line, err := s.exchange(Cmd(VerbPASV))
	if err != nil {
		return nil, err
	}
	ep, err := ParsePassiveReply(line)
	if err != nil {
		return nil, err
	}
	s.log.WithField("addr", ep.Addr()).Debug("opening data connection")
	data, err := Open(s.dialer, ep.Host, ep.Port)
	if err != nil {
		return nil, err
	}
	s.data = data
	return data, nil
}

// closeData closes the data connection opened by openData.
func (s *Session) closeData() error {
	if s.data == nil {
		return nil
	}
	err := s.data.Close()
	s.data = nil
	return err
}
