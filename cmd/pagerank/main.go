package main

import (
	"context"
	"os"

	"github.com/lioia/markov-pagerank/pkg/utils"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		utils.WarnLog("pagerank", "%v", err)
		os.Exit(1)
	}
}
