// Package domain defines core data models, interfaces and the error taxonomy
// shared across the app. It contains plain types and contracts only.
package domain
