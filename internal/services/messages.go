package services

import "fmt"

// Chat replies. WhatsApp renders *text* as bold.
const (
	msgAskUsername = "👋 Olá! Bem-vindo(a) ao assistente de projetos.\n\n" +
		"Para acessar, digite seu *nome de usuário*:"
	msgAskPassword     = "🔑 Agora digite sua *senha*:"
	msgInvalidPassword = "❌ Senha incorreta. Tente novamente:"
	msgTypeLogin       = "🔒 Você não está conectado.\n\nDigite *login* para entrar."
	msgLoggedOut       = "👋 Você saiu da sua conta.\n\nDigite *login* para entrar novamente."
	msgAlreadyLoggedIn = "✅ Você já está conectado.\n\nDigite *ajuda* para ver os comandos ou *logout* para sair."
	msgUnknownCommand  = "❓ Comando não reconhecido.\n\nDigite *ajuda* para ver os comandos disponíveis."
	msgGenericError    = "⚠️ Ocorreu um erro ao processar sua solicitação. Tente novamente."
	msgBack            = "↩️ Voltando ao menu principal.\n\nDigite *ajuda* para ver os comandos disponíveis."

	msgNoProjects        = "📁 Você ainda não participa de nenhum projeto."
	msgNoTasks           = "📋 Você não tem tarefas atribuídas."
	msgNoPendingTasks    = "🎉 Você não tem tarefas pendentes!"
	msgNoProjectTasks    = "📋 Este projeto ainda não tem tarefas."
	msgProjectNotFound   = "❌ Projeto não encontrado. Digite *projetos* para ver a lista."
	msgTaskNotFound      = "❌ Tarefa não encontrada. Digite *tarefas* para ver a lista."
	msgInvalidNumberFmt  = "❌ Número inválido. Use, por exemplo: *%s 1*"
	msgUserNotFoundFmt   = "❌ Usuário *%s* não encontrado.\n\nDigite seu *nome de usuário* novamente:"
	msgWelcomeHeaderFmt  = "✅ Login realizado com sucesso!\nOlá, *%s*! 👋\n\n"
	msgProjectNavigation = "\n\nDigite *tarefas projeto* para ver as tarefas ou *voltar* para o menu."
	msgTaskNavigation    = "\n\nDigite *voltar* para o menu."
)

// commandList is the set shown right after login
const commandList = "*Comandos disponíveis:*\n" +
	"• *projetos* - Listar seus projetos\n" +
	"• *tarefas* - Listar suas tarefas\n" +
	"• *pendente* - Tarefas não concluídas\n" +
	"• *relatorio X* - Relatório do projeto X\n" +
	"• *status* - Resumo e próximos prazos\n" +
	"• *ajuda* - Mostrar os comandos"

const helpText = "🤖 *Comandos disponíveis:*\n\n" +
	"• *projetos* - Listar seus projetos\n" +
	"• *projeto N* - Detalhes do projeto N\n" +
	"• *tarefas* - Listar suas tarefas\n" +
	"• *tarefa N* - Detalhes e checklist da tarefa N\n" +
	"• *pendente* - Tarefas não concluídas\n" +
	"• *relatorio X* - Relatório do projeto X\n" +
	"• *status* - Resumo e próximos prazos\n" +
	"• *tarefas projeto* - Tarefas do projeto aberto\n" +
	"• *voltar* - Voltar ao menu\n" +
	"• *logout* - Sair da conta\n" +
	"• *ajuda* - Mostrar esta mensagem"

func welcomeMessage(name string) string {
	return fmt.Sprintf(msgWelcomeHeaderFmt, name) + commandList
}

func userNotFoundMessage(username string) string {
	return fmt.Sprintf(msgUserNotFoundFmt, username)
}

func invalidNumberMessage(verb string) string {
	return fmt.Sprintf(msgInvalidNumberFmt, verb)
}
