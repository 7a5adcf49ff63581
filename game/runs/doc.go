// Package runs records finished challenge runs and keeps each player's best
// time per level.
//
// A run is captured when a challenge reaches its score screen. It stays
// pending in its session until the player submits or dismisses it. Submitting
// needs a player token issued by an Authority; without one the Submitter
// answers NeedsAuth and the run stays pending so the player can retry.
//
// Best times live in a Store. MemoryStore serves tests and single-process
// deployments; MySQLStore keeps one row per player and level:
//
//	store, err := runs.OpenMySQL(ctx, "user:pass@tcp(localhost:3306)/superslide")
//	if err != nil {
//		log.Fatal(err)
//	}
//	submitter := runs.NewSubmitter(store, runs.NewAuthority(secret, "superslide", 24*time.Hour))
//	result, err := submitter.Submit(ctx, token, run)
//
// A submission is saved when it is the player's first for the level or is
// strictly faster than the stored best; otherwise the stored best is
// reported back as PreviousBest.
package runs
