// Package processor provides content processing implementations.
package processor

import "github.com/ZaguanLabs/xlitfix"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = xlitfix.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = xlitfix.TextNode
