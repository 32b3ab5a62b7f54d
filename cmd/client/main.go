package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"networkpro-client/internal/api"
	"networkpro-client/internal/config"
	"networkpro-client/internal/connections"
	"networkpro-client/internal/images"
	"networkpro-client/internal/logging"
	"networkpro-client/internal/profile"
	"networkpro-client/internal/utils"
)

func main() {
	userID := flag.String("user", "1", "current user id")
	subjectID := flag.String("subject", "", "optional subject id to send a connection request to")
	flag.Parse()

	fmt.Println("🚀 NetworkPro Client Core - Demo Walkthrough")
	fmt.Println(strings.Repeat("=", 60))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	logger := logging.New(cfg)

	client := api.New(cfg, logger)
	defer client.Close()

	resolver := images.NewResolver(cfg, logger)
	store := profile.NewStore(cfg, *userID, client, resolver, logger)
	manager := connections.NewManager(*userID, client, logger)

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	record, err := store.GetProfile(ctx, *userID)
	if err != nil {
		log.Fatalf("❌ Failed to load profile: %v", err)
	}
	fmt.Printf("👤 %s - %s (%s)\n", record.DisplayName, record.Headline, record.Location)
	fmt.Printf("🖼️ Avatar: %s\n", orNone(record.AvatarRef))
	fmt.Printf("🎯 Skills: %s\n", strings.Join(record.Skills, ", "))

	if err := manager.Reconcile(ctx); err != nil {
		utils.PrintErr(fmt.Errorf("failed to reconcile connections: %w", err))
	}
	counts := manager.Counts()
	fmt.Printf("🤝 Connections: %d connected, %d sent, %d received\n",
		counts.Connected, counts.PendingSent, counts.PendingReceived)

	if *subjectID != "" {
		if err := manager.Connect(ctx, *subjectID); err != nil {
			utils.PrintErr(fmt.Errorf("connect to %s failed: %w", *subjectID, err))
		} else {
			fmt.Printf("📨 Connection request sent to %s (now %s)\n",
				*subjectID, manager.State(*subjectID))
		}
	}

	completion, err := client.GetProfileCompletion(ctx, *userID)
	if err != nil {
		utils.PrintErr(fmt.Errorf("failed to fetch profile completion: %w", err))
	} else {
		fmt.Printf("📊 Profile completion: %d%% (missing: %s)\n",
			completion.CompletionPercentage, orNone(strings.Join(completion.MissingFields, ", ")))
	}

	fmt.Printf("🎉 Done in %s\n", utils.FormatDuration(time.Since(startTime)))
	fmt.Println(strings.Repeat("=", 60))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
