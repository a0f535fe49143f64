package services

import "fmt"

const transformSystemPrompt = `You are a writing assistant. Apply the requested transformation to the user's text.
Maintain the original intent and meaning of the text.
If the transformation type is "convert to table", return the output in markdown table format.
Return only the transformed text.`

func transformPrompt(selected, transformation string) string {
	return fmt.Sprintf("The user has selected the following text:\n\n%s\n\nThe user wants to apply the following transformation: %s.", selected, transformation)
}

const chatSystemPrompt = `You are a collaborative writing assistant. The user is writing a document and is asking you for assistance.
Use the document content and the user's message to respond and make edits to the document as requested.
Reply with a JSON object with two string fields:
  "aiResponse": your reply to the user.
  "updatedDocumentContent": the full edited document when the user asked for edits, otherwise an empty string.`

func chatPrompt(document, message string) string {
	return fmt.Sprintf("Document Content: %s\n\nUser Message: %s", document, message)
}

const summarizeSystemPrompt = `You are an expert summarizer of web search results.`

const presentationSystemPrompt = `You are an AI agent that creates powerpoint presentations in markdown format, given a search query.
Follow the conventions of a slide deck: slide titles as headings, bullet points, and any other relevant information from the search results.`
