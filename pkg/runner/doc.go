/*
Package runner is the presentation boundary of a playthrough.

Render turns dialog items into Views, a Presenter shows them and collects answers,
and Play drives the active dialog to its end. Runner wraps it all in a small text adventure
loop (look, go, talk, hints, answers) used by the play command.

	g, _ := session.NewGame(ctx, "local", sl)
	r := runner.NewRunner(runner.NewTextHandler(os.Stdin, os.Stdout))
	if err := r.Run(ctx, g); err != nil {
		log.Fatal(err)
	}
*/
package runner
