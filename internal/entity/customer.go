package entity

type Customer struct {
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PhoneNumber  string `json:"phone_number"`
	Admin        bool   `json:"admin"`
}

/*
MySQL table:

CREATE TABLE customers (
	email VARCHAR(255) PRIMARY KEY,
	password_hash VARCHAR(255) NOT NULL,
	first_name VARCHAR(100) NOT NULL,
	last_name VARCHAR(100) NOT NULL,
	phone_number VARCHAR(20) NOT NULL,
	admin BOOLEAN NOT NULL DEFAULT FALSE
);
*/
