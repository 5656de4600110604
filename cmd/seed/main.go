// Command seed populates the database with demo users, posts and comments.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"tifblog/config"
	"tifblog/database"
	"tifblog/models"
	"tifblog/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	numUsers    = 5
	numPosts    = 12
	maxComments = 4
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadConfig()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}

	users := repository.NewUserRepository(db)
	content := repository.NewContentRepository(db)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	var seeded []*models.User
	for i := 0; i < numUsers; i++ {
		user := &models.User{
			Email:    fmt.Sprintf("demo%d@%s", i+1, gofakeit.DomainName()),
			Password: string(hashed),
			Name:     gofakeit.Name(),
		}
		if err := users.Create(ctx, user); err != nil {
			log.Printf("skipping user %s: %v", user.Email, err)
			continue
		}
		seeded = append(seeded, user)
	}
	if len(seeded) == 0 {
		log.Fatal("no users seeded")
	}

	for i := 0; i < numPosts; i++ {
		author := seeded[rand.Intn(len(seeded))]
		post, err := content.CreatePost(ctx, author.ID, gofakeit.Paragraph(1, 3, 12, " "))
		if err != nil {
			log.Printf("skipping post: %v", err)
			continue
		}

		for j := 0; j < rand.Intn(maxComments+1); j++ {
			commenter := seeded[rand.Intn(len(seeded))]
			if _, err := content.CreateComment(ctx, commenter.ID, gofakeit.Sentence(10), post.ID); err != nil {
				log.Printf("skipping comment: %v", err)
			}
		}
	}

	log.Printf("Seeded %d users and %d posts (password: Password123!)", len(seeded), numPosts)
}
