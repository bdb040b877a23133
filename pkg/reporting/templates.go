/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template for the enro scan dashboard: stat cards, category and entropy
charts, and the per-file results table.
*/

package reporting

// dashboardTemplate is the main HTML template for the dashboard
const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }

        .container { max-width: 1400px; margin: 0 auto; padding: 20px; }

        .panel {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 20px;
            padding: 30px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .header { text-align: center; }
        .header h1 { color: #4a5568; font-size: 2.5rem; margin-bottom: 10px; }
        .header p { color: #718096; }

        .warning {
            background: #fffaf0;
            border-left: 6px solid #ed8936;
            color: #9c4221;
            font-weight: 600;
        }

        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }

        .stat-card {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 15px;
            padding: 25px;
            text-align: center;
            box-shadow: 0 4px 20px rgba(0, 0, 0, 0.08);
        }
        .stat-card .value { font-size: 2rem; font-weight: 700; }
        .stat-card .label { color: #718096; margin-top: 6px; text-transform: uppercase; font-size: 0.8rem; }

        .tone-low .value, td.tone-low { color: #38a169; }
        .tone-medium .value, td.tone-medium { color: #d69e2e; }
        .tone-high .value, td.tone-high { color: #e53e3e; }
        .tone-neutral .value { color: #4a5568; }

        .charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(400px, 1fr)); gap: 30px; }

        h2 { color: #4a5568; margin-bottom: 20px; }

        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 10px 12px; text-align: left; border-bottom: 1px solid #e2e8f0; }
        th { background: #edf2f7; color: #4a5568; }
        td.path { font-family: monospace; word-break: break-all; }

        .footer { text-align: center; color: rgba(255, 255, 255, 0.8); padding: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="panel header">
            <h1>{{.Title}}</h1>
            <p>Run {{.RunID}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}{{if .Version}} &middot; enro {{.Version}}{{end}}</p>
        </div>

        {{if .Warning}}<div class="panel warning">{{.Warning}}</div>{{end}}

        <div class="stats-grid">
            {{range .Cards}}
            <div class="stat-card tone-{{.Tone}}">
                <div class="value">{{.Value}}</div>
                <div class="label">{{.Label}}</div>
            </div>
            {{end}}
        </div>

        <div class="charts">
            <div class="panel">
                <h2>Categories</h2>
                <canvas id="categoryChart"></canvas>
            </div>
            <div class="panel">
                <h2>Entropy Distribution</h2>
                <canvas id="entropyChart"></canvas>
            </div>
        </div>

        <div class="panel">
            <h2>Category Breakdown</h2>
            <table>
                <thead><tr><th>Category</th><th>Files</th><th>Share</th></tr></thead>
                <tbody>
                {{range .Categories}}
                    <tr><td>{{.Name}}</td><td>{{.Count}}</td><td>{{printf "%.1f" .Percent}}%</td></tr>
                {{else}}
                    <tr><td colspan="3">No files to analyze.</td></tr>
                {{end}}
                </tbody>
            </table>
        </div>

        {{if not .SummaryOnly}}
        <div class="panel">
            <h2>Analysis Results</h2>
            <table>
                <thead><tr><th>File</th><th>Type</th><th>Entropy</th><th>Size</th></tr></thead>
                <tbody>
                {{range .Files}}
                    <tr>
                        <td class="path">{{.Path}}</td>
                        <td>{{.Type}}</td>
                        <td class="tone-{{.Tone}}">{{.Entropy}}</td>
                        <td>{{.Size}}</td>
                    </tr>
                {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        <div class="footer">Generated by enro</div>
    </div>

    <script>
        new Chart(document.getElementById('categoryChart'), {{json .Charts.categories}});
        new Chart(document.getElementById('entropyChart'), {{json .Charts.entropy}});
    </script>
</body>
</html>`
