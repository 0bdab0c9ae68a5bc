package main

import (
    "errors"
    "fmt"
    "os"

    "github.com/mark3labs/apiview/internal/cli"
)

func main() {
    if err := cli.Execute(); err != nil {
        fmt.Fprintln(os.Stderr, "apiview:", err)
        if errors.Is(err, cli.ErrUsage) {
            os.Exit(2)
        }
        os.Exit(1)
    }
}
