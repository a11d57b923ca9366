package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the account privilege level. Roles form a total order
// (user < seller < admin < superadmin); authorization checks must go
// through AtLeast instead of comparing strings.
type Role string

const (
	RoleUser       Role = "user"
	RoleSeller     Role = "seller"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var roleRank = map[Role]int{
	RoleUser:       0,
	RoleSeller:     1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privileges of min.
// Unknown roles never satisfy any requirement.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	minRank, ok := roleRank[min]
	if !ok {
		return false
	}
	return rank >= minRank
}

// BankDetails holds a seller's payout account.
type BankDetails struct {
	AccountNumber     string `bson:"accountNumber" json:"accountNumber"`
	IFSCCode          string `bson:"ifscCode" json:"ifscCode"`
	AccountHolderName string `bson:"accountHolderName" json:"accountHolderName"`
}

// SellerInfo is embedded on User and carries both the business profile and
// the legacy approval metadata (the pre-SellerRequest approval path writes
// requestedAt/approved/rejectedAt directly here).
type SellerInfo struct {
	BusinessName    string              `bson:"businessName" json:"businessName"`
	BusinessAddress string              `bson:"businessAddress" json:"businessAddress"`
	GSTNumber       string              `bson:"gstNumber" json:"gstNumber"`
	BankDetails     BankDetails         `bson:"bankDetails" json:"bankDetails"`
	Approved        bool                `bson:"approved" json:"approved"`
	ApprovedBy      *primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RequestedAt     *time.Time          `bson:"requestedAt,omitempty" json:"requestedAt,omitempty"`
	RejectedAt      *time.Time          `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	RejectionReason string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
}

// Address is a single shipping address entry. At most one entry per user
// may have IsDefault set.
type Address struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	Pincode      string `bson:"pincode" json:"pincode"`
	Country      string `bson:"country,omitempty" json:"country,omitempty"`
	IsDefault    bool   `bson:"isDefault" json:"isDefault"`
}

// User is the single account document for every role. PasswordHash is empty
// for Google-federated accounts (GoogleID set).
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"passwordHash,omitempty" json:"-"`
	GoogleID     string               `bson:"googleId,omitempty" json:"-"`
	Avatar       string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         Role                 `bson:"role" json:"role"`
	SellerInfo   *SellerInfo          `bson:"sellerInfo,omitempty" json:"sellerInfo,omitempty"`
	Addresses    []Address            `bson:"addresses" json:"addresses"`
	Wishlist     []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsApprovedSeller reports whether the user may act as a seller.
func (u *User) IsApprovedSeller() bool {
	return u.Role == RoleSeller && u.SellerInfo != nil && u.SellerInfo.Approved
}
