package terminal

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/jlaffaye/ftp"
)

// localCacheTimeout bounds how long a local directory read is reused.
const localCacheTimeout = 10 * time.Second

// CommandCompleter handles command and argument completion. Remote names
// come from the most recent listing of the working directory.
type CommandCompleter struct {
	mu                sync.Mutex
	commands          []prompt.Suggest
	remoteFiles       []string
	remoteDirs        []string
	localFileCache    map[string][]string // Cache for local files by directory
	localFileCacheAge map[string]time.Time
}

// NewCommandCompleter creates a new command completer
func NewCommandCompleter() *CommandCompleter {
	return &CommandCompleter{
		commands: []prompt.Suggest{
			{Text: "ls", Description: "List the remote directory"},
			{Text: "cd", Description: "Change the remote directory"},
			{Text: "get", Description: "Download a file"},
			{Text: "put", Description: "Upload a file"},
			{Text: "delete", Description: "Delete a remote file"},
			{Text: "help", Description: "Show the server's command list"},
			{Text: "quit", Description: "Close the connection"},
		},
		localFileCache:    make(map[string][]string),
		localFileCacheAge: make(map[string]time.Time),
	}
}

// UpdateFromListing replaces the cached remote names.
func (c *CommandCompleter) UpdateFromListing(entries []*ftp.Entry) {
	var files, dirs []string
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		if entry.Type == ftp.EntryTypeFolder {
			dirs = append(dirs, entry.Name)
		} else {
			files = append(files, entry.Name)
		}
	}

	c.mu.Lock()
	c.remoteFiles = files
	c.remoteDirs = dirs
	c.mu.Unlock()
}

// Completer returns suggestions for the current input
func (c *CommandCompleter) Completer(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	words := strings.Fields(text)

	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(text, " ")) {
		return c.suggestCommands(words)
	}
	return c.suggestArguments(words, strings.HasSuffix(text, " "))
}

func (c *CommandCompleter) suggestCommands(words []string) []prompt.Suggest {
	if len(words) == 0 {
		return c.commands
	}
	return prompt.FilterHasPrefix(c.commands, words[0], true)
}

func (c *CommandCompleter) suggestArguments(words []string, fresh bool) []prompt.Suggest {
	prefix := ""
	if !fresh {
		prefix = words[len(words)-1]
	}
	// Only suggest once something has been typed
	if prefix == "" {
		return nil
	}

	op, _ := ParseCommand(words[0])
	switch op {
	case OpChangeDir:
		return c.suggestRemote(prefix, true, false)
	case OpGet, OpDelete:
		return c.suggestRemote(prefix, false, true)
	case OpList:
		return c.suggestRemote(prefix, true, true)
	case OpPut:
		return c.suggestLocalFiles(prefix)
	default:
		return nil
	}
}

func (c *CommandCompleter) suggestRemote(prefix string, dirs, files bool) []prompt.Suggest {
	c.mu.Lock()
	defer c.mu.Unlock()

	var suggestions []prompt.Suggest
	if dirs {
		suggestions = appendMatches(suggestions, c.remoteDirs, prefix, "Remote directory")
	}
	if files {
		suggestions = appendMatches(suggestions, c.remoteFiles, prefix, "Remote file")
	}
	return suggestions
}

// suggestLocalFiles returns local file suggestions for put
func (c *CommandCompleter) suggestLocalFiles(prefix string) []prompt.Suggest {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	files, ok := c.localFileCache[cwd]
	if !ok || time.Since(c.localFileCacheAge[cwd]) >= localCacheTimeout {
		entries, err := os.ReadDir(cwd)
		if err != nil {
			return nil
		}
		files = files[:0]
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, entry.Name())
			}
		}
		c.localFileCache[cwd] = files
		c.localFileCacheAge[cwd] = time.Now()
	}
	return appendMatches(nil, files, prefix, "Local file")
}

// appendMatches adds names starting with prefix, ignoring case. Hidden
// names are offered only when the prefix starts with a dot.
func appendMatches(dst []prompt.Suggest, names []string, prefix, description string) []prompt.Suggest {
	lower := strings.ToLower(prefix)
	for _, name := range names {
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), lower) {
			dst = append(dst, prompt.Suggest{Text: name, Description: description})
		}
	}
	return dst
}

// ClearCache clears all cached suggestions
func (c *CommandCompleter) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remoteFiles = nil
	c.remoteDirs = nil
	c.localFileCache = make(map[string][]string)
	c.localFileCacheAge = make(map[string]time.Time)
}
