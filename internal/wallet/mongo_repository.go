package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository keeps each user as one document with the wallet and its
// history embedded, the layout the ledger was first written against.
type MongoRepository struct {
	users *mongo.Collection
}

func NewMongoRepository(client *mongo.Client, dbName string) *MongoRepository {
	return &MongoRepository{users: client.Database(dbName).Collection("users")}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Phone        string    `bson:"phone,omitempty"`
	Roles        []string  `bson:"roles,omitempty"`
	PasswordHash string    `bson:"password_hash,omitempty"`
	Wallet       walletDoc `bson:"wallet"`
	Version      int64     `bson:"version"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type walletDoc struct {
	Balance            primitive.Decimal128 `bson:"balance"`
	TransactionHistory []transactionDoc     `bson:"transaction_history"`
}

type transactionDoc struct {
	ID          string               `bson:"id"`
	Type        string               `bson:"type"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Status      string               `bson:"status"`
	Description string               `bson:"description,omitempty"`
	ReferenceID string               `bson:"reference_id,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	ResolvedAt  *time.Time           `bson:"resolved_at,omitempty"`
	ResolvedBy  string               `bson:"resolved_by,omitempty"`
}

// userProjection keeps stored credentials out of every read.
var userProjection = bson.M{"password_hash": 0}

// EnsureIndexes creates the unique email index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func (d *userDoc) toUser() (*User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", d.ID, err)
	}
	return &User{ID: id, Name: d.Name, Email: d.Email, Phone: d.Phone, Roles: d.Roles}, nil
}

func (d *userDoc) toWallet() (*Wallet, error) {
	u, err := d.toUser()
	if err != nil {
		return nil, err
	}
	balance, err := fromDecimal128(d.Wallet.Balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}

	w := &Wallet{
		UserID:       u.ID,
		Balance:      balance,
		Transactions: make([]Transaction, 0, len(d.Wallet.TransactionHistory)),
		Version:      d.Version,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, td := range d.Wallet.TransactionHistory {
		tx, err := td.toTransaction()
		if err != nil {
			return nil, err
		}
		w.Transactions = append(w.Transactions, tx)
	}
	return w, nil
}

func (td transactionDoc) toTransaction() (Transaction, error) {
	amount, err := fromDecimal128(td.Amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse amount of %s: %w", td.ID, err)
	}
	return Transaction{
		ID:          td.ID,
		Type:        TransactionType(td.Type),
		Amount:      amount,
		Status:      TransactionStatus(td.Status),
		Description: td.Description,
		ReferenceID: td.ReferenceID,
		CreatedAt:   td.CreatedAt,
		ResolvedAt:  td.ResolvedAt,
		ResolvedBy:  td.ResolvedBy,
	}, nil
}

func (r *MongoRepository) CreateUser(ctx context.Context, u User) error {
	zero, _ := toDecimal128(decimal.Zero)
	now := time.Now().UTC()

	_, err := r.users.InsertOne(ctx, userDoc{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Roles:     u.Roles,
		Wallet:    walletDoc{Balance: zero, TransactionHistory: []transactionDoc{}},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, id uuid.UUID) (*userDoc, error) {
	var doc userDoc
	err := r.users.FindOne(ctx, bson.M{"_id": id.String()}, options.FindOne().SetProjection(userProjection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *MongoRepository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	doc, err := r.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toUser()
}

func (r *MongoRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	doc, err := r.findOne(ctx, userID)
	if err != nil {
		return nil, err
	}
	return doc.toWallet()
}

// SaveWallet replaces the embedded wallet with a single version-guarded
// update, so balance and history land together or not at all.
func (r *MongoRepository) SaveWallet(ctx context.Context, w *Wallet) error {
	balance, err := toDecimal128(w.Balance)
	if err != nil {
		return fmt.Errorf("encode balance: %w", err)
	}

	history := make([]transactionDoc, 0, len(w.Transactions))
	for _, tx := range w.Transactions {
		amount, err := toDecimal128(tx.Amount)
		if err != nil {
			return fmt.Errorf("encode amount of %s: %w", tx.ID, err)
		}
		history = append(history, transactionDoc{
			ID:          tx.ID,
			Type:        string(tx.Type),
			Amount:      amount,
			Status:      string(tx.Status),
			Description: tx.Description,
			ReferenceID: tx.ReferenceID,
			CreatedAt:   tx.CreatedAt,
			ResolvedAt:  tx.ResolvedAt,
			ResolvedBy:  tx.ResolvedBy,
		})
	}

	updatedAt := w.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": w.UserID.String(), "version": w.Version},
		bson.M{
			"$set": bson.M{
				"wallet.balance":             balance,
				"wallet.transaction_history": history,
				"updated_at":                 updatedAt,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}

	if res.MatchedCount == 0 {
		n, err := r.users.CountDocuments(ctx, bson.M{"_id": w.UserID.String()})
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if n == 0 {
			return ErrUserNotFound
		}
		return ErrConcurrentUpdate
	}

	w.Version++
	return nil
}

func (r *MongoRepository) ListPendingDebits(ctx context.Context) ([]PendingDebit, error) {
	filter := bson.M{
		"wallet.transaction_history": bson.M{
			"$elemMatch": bson.M{"type": string(TypeDebit), "status": string(StatusPending)},
		},
	}
	cur, err := r.users.Find(ctx, filter, options.Find().SetProjection(userProjection))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var result []PendingDebit
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		w, err := doc.toWallet()
		if err != nil {
			return nil, err
		}
		u, _ := doc.toUser()
		for _, tx := range w.PendingDebits() {
			result = append(result, PendingDebit{User: *u, Transaction: tx})
		}
	}

	if err := cur.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
