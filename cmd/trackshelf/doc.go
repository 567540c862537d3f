// Command trackshelf browses a remote music catalog from the terminal and
// serves the catalog screens as JSON for a presentation layer.
//
// Commands:
//
//	trackshelf list [--genre G]     list tracks, optionally filtered by genre
//	trackshelf facets               show the genre facets
//	trackshelf show ID              show one track
//	trackshelf favorites            list favorite tracks
//	trackshelf favorites toggle ID  toggle a favorite (also add, remove)
//	trackshelf add --title T ...    submit a new track
//	trackshelf serve                run the local view server
//	trackshelf config init          write a default configuration file
package main
