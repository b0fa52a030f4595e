package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management and gameplay commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomVisitCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomReadyCmd())
	cmd.AddCommand(newRoomStartCmd())
	cmd.AddCommand(newRoomGuessCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Post("/api/v1/rooms", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result Room

			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomVisitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visit <code>",
		Short: "Register as a visitor in a room",
		Long: `Register as a visitor in a room.

The visitor id is saved locally and reused on later commands, so visiting
the same room twice does not count as two visitors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]string{}
			if cfg.VisitorID != "" {
				req["visitor_id"] = cfg.VisitorID
			}

			var result VisitResult

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/visitors", code), req, &result); err != nil {
				return err
			}

			if err := cfg.SaveVisitorID(result.VisitorID); err != nil {
				return fmt.Errorf("failed to save visitor id: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code> <name>",
		Short: "Join a room as a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			name := args[1]

			if cfg.VisitorID == "" {
				return fmt.Errorf("no visitor id; run 'gumballctl room visit %s' first", code)
			}

			req := map[string]string{
				"visitor_id": cfg.VisitorID,
				"name":       name,
			}

			var result JoinResult

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/join", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready <code> <player-id>",
		Short: "Mark a player as ready to start",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			playerID := args[1]

			path := fmt.Sprintf("/api/v1/rooms/%s/players/%s/ready", code, playerID)
			if err := client.Post(path, nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Ready")
			return nil
		},
	}
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Attempt to start the game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result StartResult

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/start", code), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomGuessCmd() *cobra.Command {
	var confidence float64

	cmd := &cobra.Command{
		Use:   "guess <code> <player-id> <count>",
		Short: "Submit a guess for the current machine",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			playerID := args[1]

			var count int
			if _, err := fmt.Sscanf(args[2], "%d", &count); err != nil {
				return fmt.Errorf("count must be an integer: %w", err)
			}

			req := map[string]any{"guess": count}
			if cmd.Flags().Changed("confidence") {
				req["confidence"] = confidence
			}

			var result GuessResult

			path := fmt.Sprintf("/api/v1/rooms/%s/players/%s/guess", code, playerID)
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence in [0,1] (estimate method only)")

	return cmd
}
