/*
Package runner implements the line-mode front end of the console.

It reads one command per line, dispatches it into a console.Loop and prints the
transcript entries the command produced before reading the next line. It is used
when stdin is not a terminal (pipes, scripts, CI) or when the interactive UI is
disabled.

# Key Components

  - Runner: the read/submit/print loop.
  - IOHandler: how lines are read and entries are written (text or JSON lines).
  - TextHandler: plain text with the shell prompt in front of echoed commands.
  - JSONHandler: one JSON object per transcript entry, for machine consumers.
  - SanitizeInput: the size, encoding and control-character guard shared with the HTTP server.

# Usage

	ctrl := console.New(client, console.WithSuggester(client))
	loop := console.NewLoop(ctrl)

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx, loop); err != nil {
		log.Fatal(err)
	}
*/
package runner
