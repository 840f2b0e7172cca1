// Package codecs registers every codec with the codec package.
package codecs

import (
	_ "github.com/gugugaga/gugugaga/codec/gugugaga"
	_ "github.com/gugugaga/gugugaga/codec/oho"
	_ "github.com/gugugaga/gugugaga/codec/wabibabu"
)
