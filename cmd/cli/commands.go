package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(bracketCmd)
	rootCmd.AddCommand(leagueCmd)

	syncCmd.Flags().Int("days", 7, "How many days back to import")
	syncCmd.Flags().String("city", "", "City assigned to newly imported players")

	matchCmd.Flags().String("initiator", "", "Id of the player looking for a match")
	matchCmd.Flags().Int("count", 1, "Number of opponents wanted")
	matchCmd.Flags().String("type", "", "Match type for the enhanced engine (competitive, casual, training)")
	_ = matchCmd.MarkFlagRequired("initiator")

	resultCmd.Flags().StringSlice("winners", nil, "Ids of the winning players")
	resultCmd.Flags().StringSlice("losers", nil, "Ids of the losing players")
	_ = resultCmd.MarkFlagRequired("winners")
	_ = resultCmd.MarkFlagRequired("losers")

	bracketCreateCmd.Flags().String("name", "", "Tournament name")
	bracketCreateCmd.Flags().Int("size", 16, "Bracket size (power of two)")
	bracketCreateCmd.Flags().StringSlice("players", nil, "Entrant ids; defaults to every player")
	bracketAdvanceCmd.Flags().Int("version", -1, "Expected bracket version; -1 skips the check")
	bracketCmd.AddCommand(bracketCreateCmd, bracketShowCmd, bracketAdvanceCmd)

	leagueScheduleCmd.Flags().String("name", "", "League name")
	leagueScheduleCmd.Flags().Int("weeks", 8, "Number of weeks to schedule")
	leagueCmd.AddCommand(leagueScheduleCmd, leagueShowCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the persisted application counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <player-id>",
	Short: "Show the rating history of a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/" + url.PathEscape(args[0]) + "/history")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import players and results from Playtomic",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		city, _ := cmd.Flags().GetString("city")
		q := url.Values{}
		q.Set("days", strconv.Itoa(days))
		if city != "" {
			q.Set("city", city)
		}
		return performPostRequest("/players/sync?"+q.Encode(), nil)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find opponents for a player",
	RunE: func(cmd *cobra.Command, args []string) error {
		initiator, _ := cmd.Flags().GetString("initiator")
		count, _ := cmd.Flags().GetInt("count")
		matchType, _ := cmd.Flags().GetString("type")
		body := map[string]any{"initiatorId": initiator, "desiredCount": count}
		if matchType != "" {
			body["matchType"] = matchType
		}
		return performPostRequest("/match", body)
	},
}

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Record a finished match and update ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		winners, _ := cmd.Flags().GetStringSlice("winners")
		losers, _ := cmd.Flags().GetStringSlice("losers")
		return performPostRequest("/rating/result", map[string]any{"winnerIds": winners, "loserIds": losers})
	},
}

var bracketCmd = &cobra.Command{
	Use:   "bracket",
	Short: "Manage tournament brackets",
}

var bracketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a seeded single-elimination bracket",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		size, _ := cmd.Flags().GetInt("size")
		players, _ := cmd.Flags().GetStringSlice("players")
		return performPostRequest("/bracket", map[string]any{"name": name, "size": size, "playerIds": players})
	},
}

var bracketShowCmd = &cobra.Command{
	Use:   "show <bracket-id>",
	Short: "Show a bracket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/bracket/" + url.PathEscape(args[0]))
	},
}

var bracketAdvanceCmd = &cobra.Command{
	Use:   "advance <bracket-id> <match-id> <winner-id>",
	Short: "Record the winner of a bracket match",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"matchId": args[1], "winnerId": args[2]}
		if v, _ := cmd.Flags().GetInt("version"); v >= 0 {
			body["version"] = v
		}
		return performPostRequest("/bracket/"+url.PathEscape(args[0])+"/advance", body)
	},
}

var leagueCmd = &cobra.Command{
	Use:   "league",
	Short: "Manage round-robin leagues",
}

var leagueScheduleCmd = &cobra.Command{
	Use:   "schedule <player-id>...",
	Short: "Schedule a league for the given players",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		weeks, _ := cmd.Flags().GetInt("weeks")
		return performPostRequest("/league/schedule", map[string]any{"name": name, "playerIds": args, "weeks": weeks})
	},
}

var leagueShowCmd = &cobra.Command{
	Use:   "show <league-id>",
	Short: "Show a league schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/league/" + url.PathEscape(args[0]))
	},
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint, nil)
}

func performPostRequest(endpoint string, body any) error {
	return performRequest(http.MethodPost, endpoint, body)
}

func performRequest(method, endpoint string, body any) error {
	target := host + endpoint
	if dryRun {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		target += sep + "dry_run=true"
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
