// Package migrations embeds the auction storage schema migrations.
package migrations
