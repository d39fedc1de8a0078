package main

import (
	"fmt"
	"time"

	"nrw/pkg/config"
	"nrw/pkg/database"
	"nrw/pkg/logger"
	"nrw/pkg/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, log *logger.Logger) error {
	testUsers := []struct {
		email      string
		username   string
		display    string
		password   string
		role       models.UserRole
		isReviewed bool
	}{
		{"alice@test.com", "alice", "Alice", "password123", models.RoleViewer, true},
		{"bob@test.com", "bob", "Bob", "password123", models.RoleViewer, false},
		{"charlie@test.com", "charlie", "Charlie", "password123", models.RoleViewer, false},
		{"mod@test.com", "mod", "The Moderator", "password123", models.RoleModerator, true},
	}

	users := make([]*models.User, 0, len(testUsers))
	for _, data := range testUsers {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(data.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		user := &models.User{
			Email:       data.email,
			Username:    data.username,
			DisplayName: data.display,
			Password:    string(hashedPassword),
			Role:        data.role,
			IsReviewed:  data.isReviewed,
			IsActive:    true,
		}

		var existing models.User
		result := db.Where("email = ? OR username = ?", user.Email, user.Username).First(&existing)
		if result.Error == nil {
			log.Info("User %s already exists, skipping", user.Username)
			users = append(users, &existing)
			continue
		}

		if err := db.Create(user).Error; err != nil {
			log.Error("Failed to create user %s: %v", user.Username, err)
			continue
		}
		log.Info("Created user: %s (%s)", user.Username, user.Email)
		users = append(users, user)
	}

	if len(users) < 3 {
		return fmt.Errorf("not enough users created")
	}
	alice, bob, charlie := users[0], users[1], users[2]

	// Follows: alice follows bob, bob and charlie follow alice.
	follows := []models.Follow{
		{FollowerID: alice.ID, FolloweeID: bob.ID},
		{FollowerID: bob.ID, FolloweeID: alice.ID},
		{FollowerID: charlie.ID, FolloweeID: alice.ID},
	}
	for _, follow := range follows {
		var existing models.Follow
		if db.Where("follower_id = ? AND followee_id = ?", follow.FollowerID, follow.FolloweeID).
			First(&existing).Error == nil {
			continue
		}
		if err := db.Create(&follow).Error; err != nil {
			log.Error("Failed to create follow: %v", err)
		}
	}

	// A spread of posts so the feed has something to rank.
	seedPosts := []struct {
		author  *models.User
		content string
		status  models.PostStatus
		age     time.Duration
		likes   int
	}{
		{alice, "gm nrw", models.StatusApproved, 2 * time.Hour, 12},
		{alice, "shipping something new today", models.StatusApproved, 26 * time.Hour, 40},
		{bob, "first post, be gentle", models.StatusApproved, 5 * time.Hour, 3},
		{bob, "waiting for review on this one", models.StatusPending, 1 * time.Hour, 0},
		{charlie, "hot take: pineapple belongs on pizza", models.StatusApproved, 12 * time.Hour, 7},
	}
	for _, data := range seedPosts {
		content := data.content
		var existing models.Post
		if db.Where("author_id = ? AND content = ?", data.author.ID, content).
			First(&existing).Error == nil {
			continue
		}

		post := &models.Post{
			AuthorID:   data.author.ID,
			Content:    &content,
			Status:     data.status,
			LikesCount: data.likes,
			CreatedAt:  time.Now().Add(-data.age),
		}
		if err := db.Create(post).Error; err != nil {
			log.Error("Failed to create post: %v", err)
			continue
		}
		log.Info("Created post by %s: %q", data.author.Username, content)
	}

	// One chat with a short exchange.
	userA, userB := alice.ID, bob.ID
	if userB < userA {
		userA, userB = userB, userA
	}
	var chat models.Chat
	if db.Where("user_a_id = ? AND user_b_id = ?", userA, userB).First(&chat).Error != nil {
		chat = models.Chat{UserAID: userA, UserBID: userB}
		if err := db.Create(&chat).Error; err != nil {
			return fmt.Errorf("create chat: %w", err)
		}
		messages := []models.ChatMessage{
			{ChatID: chat.ID, SenderID: alice.ID, Content: "hey, saw your first post"},
			{ChatID: chat.ID, SenderID: bob.ID, Content: "thanks! still figuring this out"},
		}
		for _, msg := range messages {
			if err := db.Create(&msg).Error; err != nil {
				log.Error("Failed to create message: %v", err)
			}
		}
		log.Info("Created chat between %s and %s", alice.Username, bob.Username)
	}

	return nil
}
