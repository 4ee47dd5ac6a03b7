package web

const layoutStyles = `<style>
:root {
  color-scheme: light;
  --bg: #f6f1e8;
  --bg-accent: #e2eef0;
  --ink: #1f262d;
  --muted: #5c6c73;
  --card: rgba(255, 255, 255, 0.78);
  --stroke: rgba(31, 38, 45, 0.12);
  --accent: #2f6f6d;
  --accent-dark: #1e4f52;
  --danger: #9b2c2c;
  --shadow: 0 16px 40px rgba(15, 23, 28, 0.12);
}

* {
  box-sizing: border-box;
}

body {
  margin: 0;
  min-height: 100vh;
  font-family: "Iowan Old Style", "Palatino Linotype", "Book Antiqua", serif;
  color: var(--ink);
  background: radial-gradient(circle at 20% 20%, var(--bg-accent), transparent 45%),
    linear-gradient(135deg, #fbf7ef, var(--bg));
}

.topbar {
  display: flex;
  align-items: center;
  justify-content: space-between;
  gap: 16px;
  max-width: 860px;
  margin: 0 auto;
  padding: 20px 24px 0;
}

.topbar nav {
  display: flex;
  align-items: center;
  gap: 16px;
  flex-wrap: wrap;
}

.brand {
  font-weight: 700;
  color: var(--ink);
  text-decoration: none;
  letter-spacing: 0.04em;
}

.shell {
  max-width: 860px;
  margin: 0 auto;
  padding: 32px 24px 72px;
  display: grid;
  gap: 24px;
}

.page-header h1 {
  margin: 8px 0 8px;
  font-size: clamp(2rem, 3vw, 2.6rem);
  letter-spacing: -0.02em;
}

.eyebrow {
  text-transform: uppercase;
  letter-spacing: 0.24em;
  font-size: 0.72rem;
  color: var(--muted);
  margin: 0;
}

.subhead {
  margin: 0;
  color: var(--muted);
  font-size: 1rem;
}

.card {
  background: var(--card);
  border: 1px solid var(--stroke);
  border-radius: 16px;
  padding: 20px 22px;
  box-shadow: var(--shadow);
  backdrop-filter: blur(6px);
}

input,
textarea {
  border-radius: 10px;
  border: 1px solid var(--stroke);
  padding: 10px 12px;
  font-size: 1rem;
  font-family: inherit;
}

button {
  border: none;
  border-radius: 999px;
  padding: 10px 18px;
  background: var(--accent);
  color: white;
  font-size: 0.95rem;
  cursor: pointer;
  font-family: inherit;
}

button:hover {
  background: var(--accent-dark);
}

.ghost {
  background: transparent;
  border: 1px solid var(--stroke);
  color: var(--ink);
}

.ghost:hover {
  background: rgba(47, 111, 109, 0.12);
}

.back-link {
  color: var(--accent);
  text-decoration: none;
  font-weight: 600;
}

.back-link:hover {
  text-decoration: underline;
}

.page-actions {
  display: flex;
  gap: 16px;
  flex-wrap: wrap;
}

.empty,
.muted {
  margin: 0;
  color: var(--muted);
}

.filters {
  display: grid;
  gap: 16px;
}

.filters fieldset {
  border: 1px solid var(--stroke);
  border-radius: 12px;
  padding: 10px 14px;
  display: flex;
  flex-wrap: wrap;
  gap: 8px 16px;
}

.filters legend {
  font-size: 0.8rem;
  color: var(--muted);
  text-transform: uppercase;
  letter-spacing: 0.08em;
}

.checkbox-row {
  display: flex;
  align-items: center;
  gap: 6px;
}

.filter-actions {
  display: flex;
  gap: 12px;
  flex-wrap: wrap;
}

.question-list {
  list-style: none;
  margin: 0;
  padding: 0;
  display: grid;
  gap: 16px;
}

.question {
  display: grid;
  gap: 8px;
}

.question p {
  margin: 0;
}

.question ol {
  margin: 0;
  padding-left: 20px;
}

.tags {
  font-size: 0.85rem;
  color: var(--muted);
}

.pager {
  display: flex;
  justify-content: center;
  align-items: center;
  gap: 10px;
  margin-top: 16px;
  flex-wrap: wrap;
}

.pager-link {
  color: var(--accent);
  text-decoration: none;
  font-weight: 600;
}

.pager-link.active {
  color: var(--ink);
  border-bottom: 2px solid var(--accent);
}

.pager-link.disabled {
  color: var(--muted);
  cursor: default;
}

.pager-status {
  color: var(--muted);
  text-align: center;
}

.auth-form {
  display: grid;
  gap: 12px;
}

.auth-form label {
  display: grid;
  gap: 6px;
}

.field-error,
.form-error {
  color: var(--danger);
  font-size: 0.9rem;
  margin: 0;
}

.notice {
  color: var(--accent-dark);
  margin: 0;
}

.error-panel {
  border-color: rgba(155, 44, 44, 0.4);
}

.error-panel h2 {
  margin-top: 0;
}

@media (max-width: 600px) {
  .shell {
    padding: 24px 18px 48px;
  }

  button {
    width: 100%;
  }
}
</style>`
