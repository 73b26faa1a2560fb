/*
Package sdk is the Go client for the sataplan API and the home of the wire
types and error codes shared with the server.

	client := sdk.NewClient("http://localhost:8080")

	_, err := client.Signup(ctx, sdk.SignupRequest{Username: "alice", Email: "alice@example.com", Password: "hunter22!"})

	session, err := client.Authenticate(ctx, "alice", "hunter22!")
	goal, err := session.CreateGoal(ctx, sdk.CreateGoalRequest{Name: "Run a marathon"})

	share, err := session.OneTimeQR(ctx, goal.ID)
	view, err := client.ViewSharedGoal(ctx, share.Token)

Failures are returned as *APIError and can be matched with errors.Is against
the predefined values:

	if errors.Is(err, sdk.ErrTokenAlreadyUsed) { ... }
*/
package sdk
