package services

import (
	"strings"
)

// CommandKind identifies a parsed chat command
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdLogin
	CmdLogout
	CmdHelp
	CmdProjects
	CmdTasks
	CmdPending
	CmdProject
	CmdTask
	CmdReport
	CmdStatus
	CmdBack
	CmdProjectTasks
)

var commandNames = map[CommandKind]string{
	CmdUnknown:      "unknown",
	CmdLogin:        "login",
	CmdLogout:       "logout",
	CmdHelp:         "ajuda",
	CmdProjects:     "projetos",
	CmdTasks:        "tarefas",
	CmdPending:      "pendente",
	CmdProject:      "projeto",
	CmdTask:         "tarefa",
	CmdReport:       "relatorio",
	CmdStatus:       "status",
	CmdBack:         "voltar",
	CmdProjectTasks: "tarefas_projeto",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a chat message parsed into a verb and an optional argument.
// Raw keeps the trimmed text with its original case.
type Command struct {
	Kind CommandKind
	Arg  string
	Raw  string
}

// exact matches, after trimming and lower-casing
var exactCommands = map[string]CommandKind{
	"login":           CmdLogin,
	"entrar":          CmdLogin,
	"logout":          CmdLogout,
	"sair":            CmdLogout,
	"ajuda":           CmdHelp,
	"help":            CmdHelp,
	"menu":            CmdHelp,
	"projetos":        CmdProjects,
	"tarefas":         CmdTasks,
	"pendente":        CmdPending,
	"pendentes":       CmdPending,
	"status":          CmdStatus,
	"voltar":          CmdBack,
	"tarefas projeto": CmdProjectTasks,
}

// indexed commands take a 1-based position as argument
var indexedCommands = []struct {
	prefix string
	kind   CommandKind
}{
	{"projeto", CmdProject},
	{"tarefa", CmdTask},
	{"relatorio", CmdReport},
	{"relatório", CmdReport},
}

// ParseCommand normalizes text and maps it to a Command
func ParseCommand(text string) Command {
	raw := strings.TrimSpace(text)
	msg := strings.Join(strings.Fields(strings.ToLower(raw)), " ")

	if kind, ok := exactCommands[msg]; ok {
		return Command{Kind: kind, Raw: raw}
	}

	verb, arg, _ := strings.Cut(msg, " ")
	for _, c := range indexedCommands {
		if verb == c.prefix {
			return Command{Kind: c.kind, Arg: arg, Raw: raw}
		}
	}

	return Command{Kind: CmdUnknown, Raw: raw}
}
