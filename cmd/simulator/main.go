package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"time"

	"github.com/dom/civ-draft/internal/domain"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "setup":
		setupCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Draft Simulator - Development tool for exercising leader drafts

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Create a lobby, seat and ready two teams, and play the draft to the end
  setup     Create a lobby with both teams seated and ready, then stop
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Leaders-only draft with default rotations
  simulator full

  # Map draft over 5 maps, then leaders, pausing 500ms between actions
  simulator full --maps=5 --delay=500ms

  # Ready lobby you can start by hand
  simulator setup --maps=3`)
}

type lobbyFlags struct {
	maps   *int
	preset *string
}

func addLobbyFlags(fs *flag.FlagSet) lobbyFlags {
	return lobbyFlags{
		maps:   fs.Int("maps", 0, "Run a map draft over the first N catalog maps (0 disables it)"),
		preset: fs.String("preset", "", "Preset ID to create the lobby from"),
	}
}

// setupLobby creates a lobby, seats one player per team and readies both.
func setupLobby(client *APIClient, flags lobbyFlags) (*domain.Lobby, error) {
	opts := CreateLobbyOptions{
		Team1Name: "Simulated Red",
		Team2Name: "Simulated Blue",
		PresetID:  *flags.preset,
	}
	if *flags.maps > 0 {
		if *flags.maps < 2 {
			return nil, fmt.Errorf("--maps must be at least 2")
		}
		ids, err := firstMaps(client, *flags.maps)
		if err != nil {
			return nil, err
		}
		opts.WithMapDraft = true
		opts.MapIDs = ids
	}

	fmt.Print("Creating lobby... ")
	lobby, err := client.CreateLobby(opts)
	if err != nil {
		fmt.Println("FAILED")
		return nil, err
	}
	fmt.Printf("OK (%s)\n", lobby.ID)

	id := lobby.ID.String()
	for _, team := range []domain.TeamNumber{domain.Team1, domain.Team2} {
		playerID := fmt.Sprintf("sim-%d", team)
		pseudo := fmt.Sprintf("Player%d", team)
		fmt.Printf("  Seating %s on team %d... ", pseudo, team)
		if err := client.JoinTeam(id, team, playerID, pseudo); err != nil {
			fmt.Println("FAILED")
			return nil, err
		}
		if err := client.ToggleReady(id, playerID); err != nil {
			fmt.Println("FAILED")
			return nil, err
		}
		fmt.Println("ready")
	}
	return lobby, nil
}

func setupCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	flags := addLobbyFlags(fs)
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	lobby, err := setupLobby(client, flags)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  LOBBY READY TO START")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  Lobby ID: %s\n", lobby.ID)
	fmt.Printf("  Start:    POST %s/lobbies/%s/start\n", client.baseURL, lobby.ID)
	fmt.Println()
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	flags := addLobbyFlags(fs)
	delay := fs.Duration("delay", 0, "Pause between draft actions")
	seed := fs.Int64("seed", time.Now().UnixNano(), "Random seed for map and leader choices")
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	rng := rand.New(rand.NewSource(*seed))

	fmt.Println("=== Draft Simulator: Full Flow ===")
	fmt.Println()

	lobby, err := setupLobby(client, flags)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		os.Exit(1)
	}
	id := lobby.ID.String()

	leaders, err := client.Leaders()
	if err != nil {
		fmt.Printf("Failed to load leaders: %v\n", err)
		os.Exit(1)
	}

	fmt.Print("Starting draft... ")
	res, err := client.StartDraft(id)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (%s)\n\n", res.Lobby.Status)

	current := res.Lobby
	for current.Status != domain.LobbyStatusCompleted {
		if *delay > 0 {
			time.Sleep(*delay)
		}

		team := current.CurrentTeamTurn
		phase := current.DraftStatus
		var entity string
		switch current.Status {
		case domain.LobbyStatusMapSelection:
			remaining := current.RemainingMapIDs()
			entity = remaining[rng.Intn(len(remaining))]
		case domain.LobbyStatusLeaderSelection:
			entity = randomFreeLeader(rng, current, leaders)
			if entity == "" {
				fmt.Println("No free leader left to play")
				os.Exit(1)
			}
		default:
			fmt.Printf("Unexpected lobby status %s\n", current.Status)
			os.Exit(1)
		}

		if err := client.SetSelection(id, entity); err != nil {
			fmt.Printf("Warning: failed to hover %s: %v\n", entity, err)
		}

		var result *ActionResult
		if current.Status == domain.LobbyStatusMapSelection {
			result, err = client.BanMap(id, entity, team)
		} else {
			result, err = client.BanOrPickLeader(id, entity, team)
		}
		if err != nil {
			fmt.Printf("  %s%-3d team %d %-24s FAILED\n  Error: %v\n", phase.Type, phase.Index, team, entity, err)
			os.Exit(1)
		}
		fmt.Printf("  %s%-3d team %d %s\n", phase.Type, phase.Index, team, entity)
		current = result.Lobby
	}

	final, err := client.GetLobby(id)
	if err != nil {
		fmt.Printf("Failed to reload lobby: %v\n", err)
		os.Exit(1)
	}
	actions, err := client.History(id)
	if err != nil {
		fmt.Printf("Warning: failed to load history: %v\n", err)
	}
	if err := client.PostChat(id, "Player1", "gg"); err != nil {
		fmt.Printf("Warning: failed to post chat: %v\n", err)
	}

	// Print summary
	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  DRAFT COMPLETE")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  Lobby ID: %s (version %d)\n", final.ID, final.Version)
	if final.SelectedMapID != nil {
		fmt.Printf("  Map:      %s\n", *final.SelectedMapID)
	}
	fmt.Printf("  %s picks: %v\n", final.Team1.Name, []string(final.Team1.SelectedLeaders))
	fmt.Printf("  %s picks: %v\n", final.Team2.Name, []string(final.Team2.SelectedLeaders))
	fmt.Printf("  Actions:  %d\n", len(actions))
	fmt.Println()
}

func randomFreeLeader(rng *rand.Rand, lobby *domain.Lobby, leaders []*domain.Leader) string {
	free := make([]string, 0, len(leaders))
	for _, l := range leaders {
		if l.ID == domain.TimeoutLeaderID || lobby.IsLeaderUsed(l.ID) || lobby.IsLeaderAutoBanned(l.ID) {
			continue
		}
		free = append(free, l.ID)
	}
	if len(free) == 0 {
		return ""
	}
	return free[rng.Intn(len(free))]
}

// firstMaps returns the first n catalog map IDs in ID order.
func firstMaps(client *APIClient, n int) ([]string, error) {
	maps, err := client.Maps()
	if err != nil {
		return nil, err
	}
	if len(maps) < n {
		return nil, fmt.Errorf("catalog has only %d maps", len(maps))
	}
	ids := make([]string, 0, len(maps))
	for _, m := range maps {
		ids = append(ids, m.ID)
	}
	slices.Sort(ids)
	return ids[:n], nil
}
