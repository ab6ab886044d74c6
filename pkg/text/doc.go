// Package text holds the user-facing templates of the storefront: menu
// labels, prompts, order summaries and keyboards.
//
// Messages use a light Markdown dialect (*bold*, `code`) understood by the
// chat transport and rendered by glamour in the terminal transport.
package text
