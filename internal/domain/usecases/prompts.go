package usecases

import "strings"

// localPrompt asks for an answer from the codebase context alone, or the sentinel.
func (r *QueryRouter) localPrompt(history, codeContext, question string) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful research assistant for a project associated with a Python codebase.\n\n")
	sb.WriteString("About this project:\n")
	sb.WriteString(r.cfg.ProjectDescription)
	sb.WriteString("\n\nFirst check if you can answer using just the local codebase context or your own knowledge.\n")
	sb.WriteString("If you can answer confidently using only this context, do so.\n")
	sb.WriteString("If you need a web search or external knowledge to provide a complete answer, respond with exactly \"")
	sb.WriteString(WebSearchSentinel)
	sb.WriteString("\".\n\n")
	sb.WriteString("Previous conversation:\n")
	sb.WriteString(history)
	sb.WriteString("\n\nRelevant code files (if any):\n")
	sb.WriteString(codeContext)
	sb.WriteString("\n\nQuestion about the project: ")
	sb.WriteString(question)
	sb.WriteString("\n\nWhen answering:\n")
	sb.WriteString("1. Reference specific files and code structures you see in the context\n")
	sb.WriteString("2. If you describe functionality, make sure it matches the actual implementation shown\n")
	sb.WriteString("3. If you're unsure about something or can't find it in the context, say so\n")
	sb.WriteString("4. Focus on the actual code implementation rather than making assumptions\n")
	return sb.String()
}

// webPrompt combines codebase context with formatted web results.
func (r *QueryRouter) webPrompt(history, codeContext, webResults, question string) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using both the codebase context and web search results.\n")
	sb.WriteString("Make sure to consider both sources of information in your response.\n\n")
	sb.WriteString("About this project:\n")
	sb.WriteString(r.cfg.ProjectDescription)
	sb.WriteString("\n\nPrevious conversation:\n")
	sb.WriteString(history)
	sb.WriteString("\n\nRelevant code files:\n")
	sb.WriteString(codeContext)
	sb.WriteString("\n\nWeb results:\n")
	sb.WriteString(webResults)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n")
	return sb.String()
}

// conversationPrompt is used when RAG mode is off.
func (r *QueryRouter) conversationPrompt(history, question string) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful AI assistant. Use the conversation history and your knowledge to provide informed responses.\n\n")
	sb.WriteString("About this project:\n")
	sb.WriteString(r.cfg.ProjectDescription)
	sb.WriteString("\n\nPrevious conversation:\n")
	sb.WriteString(history)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n")
	return sb.String()
}
