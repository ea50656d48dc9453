// Package provider defines transliteration model backends.
package provider

import "github.com/ZaguanLabs/xlitfix"

// Model is the interface for transliteration model backends.
// This is an alias to the main package interface for convenience.
type Model = xlitfix.Model

// TransliterateRequest is an alias to the main package type.
type TransliterateRequest = xlitfix.TransliterateRequest
