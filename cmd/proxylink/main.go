package main

import (
	// Register Plugins via side-effects
	_ "proxylink/internal/collectors/file"
	_ "proxylink/internal/collectors/stdin"
	_ "proxylink/internal/publishers/file"
	_ "proxylink/internal/publishers/stdout"
)

func main() {
	Execute()
}
