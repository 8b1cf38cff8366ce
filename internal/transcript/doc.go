// Package transcript exports the chat history as a standalone HTML page.
package transcript
