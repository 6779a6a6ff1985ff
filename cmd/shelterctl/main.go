// Command shelterctl runs administrative tasks against the checkin database:
// schema migration, seeding, night generation, guest merges and event tailing.
package main

import "os"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
