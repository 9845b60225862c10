// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/launchdump/launchdump/cmd/launchdump"

func main() {
	cmd.Execute()
}
