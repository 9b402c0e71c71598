package main

import "github.com/dbflute/dbflute-core-sub011/cmd"

func main() {
	cmd.Execute()
}
